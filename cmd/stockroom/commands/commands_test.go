package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/stockroom/app/catalog"
	"github.com/mytheresa/stockroom/app/reports"
	"github.com/mytheresa/stockroom/cmd/stockroom/output"
	"github.com/mytheresa/stockroom/models"
)

// setupFreshEnv points the CLI at a sqlite file that does not exist yet.
func setupFreshEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STOCKROOM_ENV", "test")
	t.Setenv("STOCKROOM_DB_DRIVER", "sqlite")
	t.Setenv("STOCKROOM_SQLITE_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("STOCKROOM_LOW_STOCK_THRESHOLD", "5")
}

// setupEnv is setupFreshEnv followed by an explicit migrate.
func setupEnv(t *testing.T) {
	t.Helper()
	setupFreshEnv(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := output.Out
	output.Out = &buf
	defer func() { output.Out = prev }()

	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestDeliverAndIssue(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "category", "add", "Electronics", "--description", "Cables and plugs")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category Electronics")

	out, err = run(t, "deliver", "Cable", "--category", "Electronics", "--qty", "10", "--price", "2.50")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Cable")

	out, err = run(t, "--json", "deliver", "Cable", "--category", "1", "--qty", "5", "--price", "2.75")
	require.NoError(t, err)
	var delivered struct {
		Created bool            `json:"created"`
		Product catalog.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &delivered))
	assert.False(t, delivered.Created)
	assert.Equal(t, 15, delivered.Product.Quantity)
	assert.Equal(t, 41.25, delivered.Product.Value)

	_, err = run(t, "issue", "1", "16")
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	out, err = run(t, "issue", "1", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "3 left")
	assert.Contains(t, out, "below 5 units")
}

func TestDeliverUnknownCategory(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "deliver", "Cable", "--category", "Garden", "--qty", "1", "--price", "1")

	assert.ErrorIs(t, err, models.ErrInvalidCategory)
	assert.Equal(t, "category does not exist", userMessage(err))
}

func TestDeliverValidation(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "category", "add", "Electronics")
	require.NoError(t, err)

	testCases := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "Zero quantity", args: []string{"--qty", "0", "--price", "1"}, wantErr: models.ErrInvalidQuantity},
		{name: "Negative price", args: []string{"--qty", "1", "--price", "-1"}, wantErr: models.ErrInvalidPrice},
		{name: "Three decimals", args: []string{"--qty", "1", "--price", "2.755"}, wantErr: models.ErrInvalidPrice},
		{name: "Above column maximum", args: []string{"--qty", "1", "--price", "100000000"}, wantErr: models.ErrInvalidPrice},
		{name: "Malformed price", args: []string{"--qty", "1", "--price", "abc"}, wantMsg: `invalid price "abc"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"deliver", "Cable", "--category", "Electronics"}, tc.args...)
			_, err := run(t, args...)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

func TestReportsAndExport(t *testing.T) {
	setupEnv(t)
	for _, args := range [][]string{
		{"category", "add", "Electronics"},
		{"category", "add", "Garden"},
		{"product", "add", "Cable", "--category", "Electronics", "--qty", "10", "--price", "2.50"},
		{"product", "add", "Hose", "--category", "Garden", "--qty", "3", "--price", "25"},
	} {
		_, err := run(t, args...)
		require.NoError(t, err, strings.Join(args, " "))
	}

	out, err := run(t, "--json", "dashboard")
	require.NoError(t, err)
	var dash reports.DashboardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Equal(t, 2, dash.SKUCount)
	assert.Equal(t, int64(13), dash.TotalUnits)
	assert.Equal(t, 100.0, dash.TotalValue)
	require.Len(t, dash.LowStock, 1)
	assert.Equal(t, "Hose", dash.LowStock[0].Name)

	out, err = run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Low stock means fewer than 5 units")

	out, err = run(t, "--json", "report")
	require.NoError(t, err)
	var shares []reports.CategoryShareResponse
	require.NoError(t, json.Unmarshal([]byte(out), &shares))
	require.Len(t, shares, 2)
	assert.Equal(t, "Electronics", shares[0].Name)
	assert.Equal(t, int64(25), shares[0].PercentShare)
	assert.Equal(t, int64(75), shares[1].PercentShare)

	out, err = run(t, "--json", "search", "--name", "CAB")
	require.NoError(t, err)
	var found []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Cable", found[0].Name)

	csvPath := filepath.Join(t.TempDir(), "stock.csv")
	out, err = run(t, "export", "--out", csvPath, "--min-price", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 product(s)")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "2,Hose,Garden,3,25.00,75.00,"))
}

func TestCategoryGuard(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "category", "add", "Electronics")
	require.NoError(t, err)
	_, err = run(t, "product", "add", "Cable", "--category", "1", "--price", "1")
	require.NoError(t, err)

	_, err = run(t, "category", "delete", "1")
	assert.ErrorIs(t, err, models.ErrCategoryNotEmpty)

	_, err = run(t, "product", "update", "1", "--qty", "4", "--price", "1.10")
	require.NoError(t, err)

	_, err = run(t, "product", "delete", "1")
	require.NoError(t, err)

	out, err := run(t, "category", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted category 1")

	out, err = run(t, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No categories")
}

func TestDuplicateCategory(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "category", "add", "Electronics")
	require.NoError(t, err)

	_, err = run(t, "category", "add", "Electronics")

	assert.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestCommandsOnFreshDatabase(t *testing.T) {
	setupFreshEnv(t)

	out, err := run(t, "category", "add", "Electronics")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category Electronics")

	out, err = run(t, "--json", "search")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestDashboardOnFreshDatabase(t *testing.T) {
	setupFreshEnv(t)

	out, err := run(t, "--json", "dashboard")

	require.NoError(t, err)
	var dash reports.DashboardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Zero(t, dash.SKUCount)
}

func TestCategoryResolvedByNameBeforeID(t *testing.T) {
	setupEnv(t)
	for _, name := range []string{"Electronics", "Garden", "1"} {
		_, err := run(t, "category", "add", name)
		require.NoError(t, err, name)
	}

	testCases := []struct {
		name         string
		product      string
		ref          string
		wantCategory string
	}{
		{name: "Numeric name wins over id", product: "Cable", ref: "1", wantCategory: "1"},
		{name: "Id when no name matches", product: "Hose", ref: "2", wantCategory: "Garden"},
		{name: "Plain name", product: "Plug", ref: "Electronics", wantCategory: "Electronics"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, "--json", "deliver", tc.product, "--category", tc.ref, "--qty", "1", "--price", "1")
			require.NoError(t, err)

			var delivered struct {
				Product catalog.Product `json:"product"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &delivered))
			assert.Equal(t, tc.wantCategory, delivered.Product.Category.Name)
		})
	}
}
