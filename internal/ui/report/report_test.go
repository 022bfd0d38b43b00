package report_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/engine/orchestrator"
	"go.trai.ch/verso/internal/ui/report"
)

func TestPrinter_Status(t *testing.T) {
	m := &domain.Manifest{Version: 4}
	m.Put("31.0.0", domain.ModuleRecord{
		Name:            "example-widget",
		TargetNamespace: "versioned.r31.com.example.widget",
		Installable:     true,
		State:           domain.StageDone,
		Artifacts:       []domain.ArtifactRecord{{Name: "widget", RenamedName: "widget-r31"}},
	})
	m.Put("32.0.0", domain.ModuleRecord{
		Name:            "example-widget",
		TargetNamespace: "versioned.r32.com.example.widget",
		State:           domain.StageFailed,
	})

	var buf bytes.Buffer
	require.NoError(t, report.NewPrinterWithProfile(&buf, termenv.Ascii).Status(m))

	out := buf.String()
	assert.Contains(t, out, "manifest v4")
	assert.Contains(t, out, "REVISION")
	assert.Contains(t, out, "versioned.r31.com.example.widget")
	assert.Contains(t, out, "widget-r31")
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "✗ failed")
	assert.Contains(t, out, "yes")
	assert.NotContains(t, out, "\x1b[", "ascii profile emits no escape sequences")
}

func TestPrinter_Status_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.NewPrinterWithProfile(&buf, termenv.Ascii).Status(&domain.Manifest{}))
	assert.Equal(t, "no revisions versioned yet\n", buf.String())
}

func TestPrinter_Run(t *testing.T) {
	r := &orchestrator.Report{
		Revision: "31.0.0",
		Modules: []orchestrator.ModuleReport{
			{Module: "gadget", Stage: domain.StageFailed, Err: errors.New("dangling reference\ncaused by: libgizmo.so")},
			{Module: "gizmo", Stage: domain.StageDone, Cached: true},
			{Module: "widget", Stage: domain.StageDone},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.NewPrinterWithProfile(&buf, termenv.Ascii).Run(r))

	out := buf.String()
	assert.Contains(t, out, "revision 31.0.0")
	assert.Contains(t, out, "✗ gadget failed ! dangling reference\n")
	assert.Contains(t, out, "~ gizmo up to date\n")
	assert.Contains(t, out, "✓ widget done\n")
	assert.NotContains(t, out, "libgizmo.so")
}
