package tasks

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/agenda/internal/agenda"
	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/config"
	"github.com/julianstephens/agenda/internal/errors"
	"github.com/julianstephens/agenda/internal/models"
	"github.com/julianstephens/agenda/internal/storage"
	"github.com/julianstephens/agenda/internal/testutil"
)

func setupTest(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := testutil.NewTestStore(t)
	out := &bytes.Buffer{}
	return &cli.Context{
		Ctx:    context.Background(),
		Config: &config.Config{HorizonDays: 14, AlertDays: 15},
		Store:  store,
		Service: agenda.New(store, agenda.Options{
			HorizonDays: 14,
			Location:    time.UTC,
			Now:         testutil.FixedClock(t, "2026-10-12"),
		}),
		Out: out,
	}, out
}

func TestTaskAddAndList(t *testing.T) {
	ctx, out := setupTest(t)

	add := &TaskAddCmd{Description: "write report", Date: "today", Priority: "important"}
	if err := add.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !strings.Contains(out.String(), "Added task: write report on 2026-10-12") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	list := &TaskListCmd{Date: "today"}
	if err := list.Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "write report") || !strings.Contains(out.String(), "important") {
		t.Errorf("list output missing task:\n%s", out.String())
	}
}

func TestTaskAddRejectsBadPriority(t *testing.T) {
	ctx, _ := setupTest(t)
	add := &TaskAddCmd{Description: "x", Date: "today", Priority: "urgent"}
	if err := add.Run(ctx); err == nil {
		t.Error("expected an error for an unknown priority")
	}
}

func TestTaskDoneUndo(t *testing.T) {
	ctx, _ := setupTest(t)
	if err := (&TaskAddCmd{Description: "call mom", Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	flags := cli.ContentFlags{Description: "call mom", Date: "today"}
	if err := (&TaskDoneCmd{ContentFlags: flags}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}
	status := models.StatusDone
	occs, err := ctx.Service.Day(ctx.Context(), "2026-10-12", agenda.DayFilter{Status: &status})
	if err != nil || len(occs) != 1 {
		t.Fatalf("done items = %v, %v", occs, err)
	}

	if err := (&TaskUndoCmd{ContentFlags: flags}).Run(ctx); err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	occs, _ = ctx.Service.Day(ctx.Context(), "2026-10-12", agenda.DayFilter{Status: &status})
	if len(occs) != 0 {
		t.Errorf("item still done after undo")
	}

	named := cli.ContentFlags{Description: "call mom", Date: "today", Name: models.StringPtr("family")}
	if err := (&TaskDoneCmd{ContentFlags: named}).Run(ctx); !errors.IsNotFound(err) {
		t.Errorf("named lookup should not match an unnamed task, got %v", err)
	}
}

func TestTaskEdit(t *testing.T) {
	ctx, _ := setupTest(t)
	if err := (&TaskAddCmd{Description: "call mom", Date: "tomorrow", Name: models.StringPtr("family")}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	edit := &TaskEditCmd{
		ContentFlags:   cli.ContentFlags{Description: "call mom", Date: "tomorrow", Name: models.StringPtr("family")},
		SetDescription: "call mom back",
		ClearName:      true,
		Priority:       "simple",
	}
	if err := edit.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	id, err := ctx.Service.FindOccurrenceID(ctx.Context(), "2026-10-13", storage.Content{Description: "call mom back"})
	if err != nil {
		t.Fatalf("edited task not found: %v", err)
	}
	occ, _ := ctx.Service.Occurrence(ctx.Context(), id)
	if occ.Priority == nil || *occ.Priority != models.PrioritySimple {
		t.Errorf("priority = %v", occ.Priority)
	}

	bad := &TaskEditCmd{SetName: models.StringPtr("x"), ClearName: true}
	if err := bad.Validate(); err == nil {
		t.Error("--set-name with --clear-name should be rejected")
	}
}

func TestTaskDelete(t *testing.T) {
	ctx, out := setupTest(t)
	if err := (&TaskAddCmd{Description: "old", Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	del := &TaskDeleteCmd{ContentFlags: cli.ContentFlags{Description: "old", Date: "today"}, Yes: true}
	if err := del.Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted: old on 2026-10-12") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if err := del.Run(ctx); !errors.IsNotFound(err) {
		t.Errorf("second delete = %v, want not found", err)
	}
}

func TestTaskListQueryAndFilters(t *testing.T) {
	ctx, out := setupTest(t)
	for _, c := range []*TaskAddCmd{
		{Description: "Buy milk", Date: "today"},
		{Description: "buy bread", Date: "2026-10-20"},
	} {
		if err := c.Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&TaskListCmd{Query: "buy"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Buy milk") || !strings.Contains(out.String(), "buy bread") {
		t.Errorf("query output:\n%s", out.String())
	}

	if err := (&TaskListCmd{Date: "today", Kind: "meeting"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown kind")
	}
	if err := (&TaskListCmd{Date: "today", Status: "late"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown status")
	}
}
