package commands

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stocktransfer/pkg/domain/entities"
	"github.com/vsinha/stocktransfer/pkg/infrastructure/repositories/sqlite"
)

const bakeryDir = "../../../../testdata/bakery"

func run(t *testing.T, config Config) (string, error) {
	t.Helper()
	if config.Format == "" {
		config.Format = "text"
	}
	var buf bytes.Buffer
	err := NewTransferCommand(config, &buf).Execute(context.Background())
	return buf.String(), err
}

func TestQuantityFlags(t *testing.T) {
	q := QuantityFlags{}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(q, "qty", "")

	require.NoError(t, fs.Parse([]string{"-qty", "FLOUR=25", "-qty", "sugar = 2.5"}))
	assert.Equal(t, "FLOUR=25,sugar=2.5", q.String())

	assert.Error(t, q.Set("FLOUR"))
	assert.Error(t, q.Set("=4"))
	assert.Error(t, q.Set("FLOUR=abc"))
}

func TestTransferCommand_ListsOpenRequisitions(t *testing.T) {
	out, err := run(t, Config{ScenarioDir: bakeryDir})
	require.NoError(t, err)

	assert.Contains(t, out, "MRQ-101")
	assert.Contains(t, out, "MRQ-103")
	assert.NotContains(t, out, "MRQ-102", "completed requisitions are not offered")
}

func TestTransferCommand_ListsSourceOptions(t *testing.T) {
	out, err := run(t, Config{ScenarioDir: bakeryDir, RequisitionID: "101"})
	require.NoError(t, err)

	assert.Contains(t, out, "Central Store | Req: 108 | OnHand: 95")
	assert.Contains(t, out, "Airport Outlet | Req: 108 | OnHand: 75")
	assert.NotContains(t, out, "Downtown Outlet", "the destination is never a source")
}

func TestTransferCommand_Preview(t *testing.T) {
	out, err := run(t, Config{
		ScenarioDir:       bakeryDir,
		RequisitionID:     "101",
		SourceWarehouseID: "1",
		Quantities:        QuantityFlags{"FLOUR": entities.NewQuantity(45)},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "State: READY")
	assert.Contains(t, out, "Route: 1 -> 2 (bin D-IN)")
	assert.NotContains(t, out, "Submitted")
}

func TestTransferCommand_SubmitToSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "transfers.db")
	config := Config{
		ScenarioDir:       bakeryDir,
		RequisitionID:     "101",
		SourceWarehouseID: "1",
		Submit:            true,
		SQLitePath:        dbPath,
		SubmittedBy:       "store.clerk",
	}

	out, err := run(t, config)
	require.NoError(t, err)
	assert.Contains(t, out, "Submitted TRF-")

	out, err = run(t, config)
	require.NoError(t, err)
	assert.Contains(t, out, "Already submitted as TRF-")

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()
	ids, err := store.TransferredRequisitionIDs(context.Background())
	require.NoError(t, err)
	assert.Contains(t, ids, "101")
}

func TestTransferCommand_SubmitBlocked(t *testing.T) {
	_, err := run(t, Config{
		ScenarioDir:       bakeryDir,
		RequisitionID:     "104",
		SourceWarehouseID: "1",
		Submit:            true,
		SQLitePath:        filepath.Join(t.TempDir(), "transfers.db"),
	})
	require.Error(t, err)
	assert.True(t, entities.IsRejection(err))
	assert.Contains(t, err.Error(), "destination bin")
}

func TestTransferCommand_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"no input", Config{}, "must specify either -scenario"},
		{"bad format", Config{ScenarioDir: bakeryDir, Format: "pdf"}, "unsupported output format"},
		{"submit without db", Config{ScenarioDir: bakeryDir, Submit: true}, "-submit requires -db"},
		{"qty without source", Config{ScenarioDir: bakeryDir, Quantities: QuantityFlags{"FLOUR": entities.NewQuantity(1)}}, "-qty requires -source"},
		{"missing files", Config{ScenarioDir: "does-not-exist"}, "file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTransferCommand_Help(t *testing.T) {
	out, err := run(t, Config{Help: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Stock Transfer CLI"))
}
