package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	centerStore "centerdir/internal/adapters/storage/center"
	"centerdir/internal/application/orchestrators"
)

// importCenters pairs the read and upsert sides of a center store.
type importCenters struct {
	centerStore.Store
	centerStore.Writer
}

var datasetExtensions = map[string]bool{".json": true, ".yaml": true, ".yml": true}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load centers and programs from a JSON or YAML dataset",
		Long: `Upserts every center in FILE, then creates its programs with the same
validation as the add-program form. Duplicate programs are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if ext := strings.ToLower(filepath.Ext(path)); !datasetExtensions[ext] {
				return fmt.Errorf("unsupported dataset extension %q (want .json, .yaml or .yml)", ext)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			ds, err := orchestrators.ParseDataset(data)
			if err != nil {
				return err
			}

			b, err := openBackend()
			if err != nil {
				return err
			}
			defer b.Close()
			writer, err := b.CenterWriter()
			if err != nil {
				return err
			}

			res, err := orchestrators.ExecuteImportDataset(cmd.Context(), ds, orchestrators.ImportDatasetDeps{
				CenterStore:  importCenters{Store: b.Centers, Writer: writer},
				ProgramStore: b.Programs,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "centers: %d, programs created: %d, duplicates skipped: %d, invalid skipped: %d\n",
				res.Centers, res.Created, res.Duplicates, res.Invalid)
			return nil
		},
	}
}
