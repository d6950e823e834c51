package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
)

// CenterSaver upserts centers.
type CenterSaver interface {
	Save(ctx context.Context, c center.Center) error
}

// Dataset is a directory export. JSON files parse as YAML, so one decoder
// handles both formats.
type Dataset struct {
	Meta struct {
		Version     string `yaml:"version"`
		LastUpdated string `yaml:"last_updated"`
	} `yaml:"meta"`
	Centers  []datasetCenter  `yaml:"centers"`
	Programs []datasetProgram `yaml:"programs"`
}

// datasetCenter accepts both {center_id, name_en, name_ar} and {id, name} rows.
type datasetCenter struct {
	CenterID string `yaml:"center_id"`
	ID       string `yaml:"id"`
	Code     string `yaml:"code"`
	NameEn   string `yaml:"name_en"`
	NameAr   string `yaml:"name_ar"`
	Name     string `yaml:"name"`
	Status   string `yaml:"status"`
}

func (d datasetCenter) toDomain() center.Center {
	c := center.Center{
		ID:     firstNonBlank(d.CenterID, d.ID),
		Code:   d.Code,
		NameEn: firstNonBlank(d.NameEn, d.Name),
		NameAr: d.NameAr,
		Status: d.Status,
	}
	c.Normalize()
	return c
}

// datasetProgram accepts both the bilingual and the program_name/program_code rows.
type datasetProgram struct {
	ProgramID   string `yaml:"program_id"`
	ID          string `yaml:"id"`
	CenterID    string `yaml:"center_id"`
	Code        string `yaml:"code"`
	ProgramCode string `yaml:"program_code"`
	NameEn      string `yaml:"name_en"`
	ProgramName string `yaml:"program_name"`
	NameAr      string `yaml:"name_ar"`
	Status      string `yaml:"status"`
	Description string `yaml:"description"`
	CreatedBy   string `yaml:"created_by"`
}

func (d datasetProgram) toInput() CreateProgramInput {
	return CreateProgramInput{
		ID:          firstNonBlank(d.ProgramID, d.ID),
		CenterID:    d.CenterID,
		NameEn:      firstNonBlank(d.NameEn, d.ProgramName),
		NameAr:      d.NameAr,
		Code:        firstNonBlank(d.Code, d.ProgramCode),
		Status:      d.Status,
		Description: d.Description,
		CreatedBy:   d.CreatedBy,
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// ParseDataset decodes a JSON or YAML dataset.
// PRE: data is a complete document
// POST: Returns the dataset or a parse error naming the problem
func ParseDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse dataset: %w", err)
	}
	if len(ds.Centers) == 0 && len(ds.Programs) == 0 {
		return Dataset{}, errors.New("parse dataset: no centers or programs found")
	}
	return ds, nil
}

// CenterStoreForImport saves centers and resolves them for program creation.
type CenterStoreForImport interface {
	CenterSaver
	CenterLookup
}

// ImportDatasetDeps holds dependencies for ImportDataset.
type ImportDatasetDeps struct {
	CenterStore  CenterStoreForImport
	ProgramStore ProgramCreator
	Now          func() time.Time
}

// ImportResult counts what an import did.
type ImportResult struct {
	Centers    int
	Created    int
	Duplicates int
	Invalid    int
}

// ExecuteImportDataset upserts every center and creates every program.
// PRE: ds has been parsed
// POST: Centers are saved; programs are created through the same rules as
// the add-program form. Duplicate and invalid programs are counted and skipped;
// any other failure stops the import.
func ExecuteImportDataset(ctx context.Context, ds Dataset, deps ImportDatasetDeps) (ImportResult, error) {
	var res ImportResult
	for i, row := range ds.Centers {
		c := row.toDomain()
		if err := c.Validate(); err != nil {
			slog.Warn("import_event", "event", "center_skipped", "index", i, "error", err.Error())
			res.Invalid++
			continue
		}
		if err := deps.CenterStore.Save(ctx, c); err != nil {
			return res, fmt.Errorf("save center %s: %w", c.ID, err)
		}
		res.Centers++
	}

	createDeps := CreateProgramDeps{
		CenterStore:  deps.CenterStore,
		ProgramStore: deps.ProgramStore,
		Now:          deps.Now,
	}
	for i, row := range ds.Programs {
		_, err := ExecuteCreateProgram(ctx, row.toInput(), createDeps)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, directory.ErrDuplicateProgram):
			res.Duplicates++
		case errors.Is(err, directory.ErrValidation), errors.Is(err, directory.ErrNotFound):
			slog.Warn("import_event", "event", "program_skipped", "index", i, "error", err.Error())
			res.Invalid++
		default:
			return res, fmt.Errorf("create program %d: %w", i, err)
		}
	}

	slog.Info("import_event", "event", "completed", "version", ds.Meta.Version,
		"centers", res.Centers, "created", res.Created, "duplicates", res.Duplicates, "invalid", res.Invalid)
	return res, nil
}
