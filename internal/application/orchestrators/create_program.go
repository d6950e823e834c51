package orchestrators

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	emailAdapter "centerdir/internal/adapters/email"
	"centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/locale"
	"centerdir/internal/domain/program"
)

// CenterLookup resolves the owning center of a new program.
type CenterLookup interface {
	GetByID(ctx context.Context, id string) (center.Center, error)
}

// ProgramCreator inserts a program.
type ProgramCreator interface {
	Create(ctx context.Context, p program.Program) (program.Program, error)
}

// CreateProgramInput carries the submitted form fields.
type CreateProgramInput struct {
	ID          string // optional; blank generates one
	CenterID    string
	NameEn      string
	NameAr      string
	Code        string
	Status      string
	Description string
	CreatedBy   string
}

// CreateProgramDeps holds dependencies for CreateProgram.
type CreateProgramDeps struct {
	CenterStore  CenterLookup
	ProgramStore ProgramCreator
	Mailer       emailAdapter.Sender // optional
	NotifyTo     []string
	BaseURL      string // absolute site URL used in notification links
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateProgram validates and inserts a new program.
// PRE: none; input is untrusted
// POST: Returns the stored program, or a ValidationError (before any store
// call), NotFound, DuplicateProgram, or DataUnavailable
// INVARIANT: a notification failure never fails the creation
func ExecuteCreateProgram(ctx context.Context, input CreateProgramInput, deps CreateProgramDeps) (program.Program, error) {
	p := program.Program{
		CenterID:    input.CenterID,
		NameEn:      input.NameEn,
		NameAr:      input.NameAr,
		Code:        input.Code,
		Status:      input.Status,
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return program.Program{}, err
	}

	c, err := deps.CenterStore.GetByID(ctx, p.CenterID)
	if err != nil {
		return program.Program{}, directory.Unavailable("get center", err)
	}

	switch id := strings.TrimSpace(input.ID); {
	case id != "":
		p.ID = id
	case deps.GenerateID != nil:
		p.ID = deps.GenerateID()
	default:
		p.ID = uuid.New().String()
	}
	if deps.Now != nil {
		p.CreatedAt = deps.Now().UTC()
	} else {
		p.CreatedAt = time.Now().UTC()
	}

	stored, err := deps.ProgramStore.Create(ctx, p)
	if err != nil {
		slog.Info("program_event", "event", "create_failed", "center_id", p.CenterID, "name", p.NameEn, "error", err.Error())
		return program.Program{}, directory.Unavailable("create program", err)
	}

	slog.Info("program_event", "event", "created", "program_id", stored.ID, "center_id", stored.CenterID, "created_by", stored.CreatedBy)
	notifyProgramCreated(ctx, c, stored, deps)
	return stored, nil
}

func notifyProgramCreated(ctx context.Context, c center.Center, p program.Program, deps CreateProgramDeps) {
	if deps.Mailer == nil || len(deps.NotifyTo) == 0 {
		return
	}
	link := ""
	if deps.BaseURL != "" {
		link = strings.TrimRight(deps.BaseURL, "/") + "/center?id=" + url.QueryEscape(c.ID)
	}
	subject, body, err := emailAdapter.RenderProgramNotice(emailAdapter.ProgramNotice{
		CenterName:  c.Name(locale.English),
		CenterCode:  c.DisplayCode(),
		ProgramName: p.Name(locale.English),
		ProgramCode: p.Code,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		Link:        link,
	})
	if err != nil {
		slog.Error("program_notice_failed", "program_id", p.ID, "error", err)
		return
	}
	if _, err := deps.Mailer.Send(ctx, emailAdapter.SendRequest{To: deps.NotifyTo, Subject: subject, HTML: body}); err != nil {
		slog.Error("program_notice_failed", "program_id", p.ID, "error", err)
	}
}
