package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/msrp-cli/internal/dataset"
	"github.com/KaramelBytes/msrp-cli/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const scenarioCSV = `Make,Model,Type,MSRP
Acura,TSX,Sedan,"$30,000"
Acura,MDX,SUV,"$35,000"
BMW,330i,Sedan,"$40,000"
`

// resetFlags restores every flag in the command tree to its default so
// values from one invocation do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg, cfgErr = nil, nil
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v (stderr: %s)", args, err, errOut)
	}
	return out
}

// isolate points HOME at a temp dir and writes the scenario dataset there.
func isolate(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "cars.csv")
	if err := os.WriteFile(csvPath, []byte(scenarioCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return home, csvPath
}

func TestCLI_FilterCascade(t *testing.T) {
	_, csvPath := isolate(t)

	out := mustRun(t, "filter", csvPath, "--make", "Acura", "--type", "Sedan")
	if !strings.Contains(out, "Rows: 1 of 3") || !strings.Contains(out, "| Acura | TSX | Sedan | 30000 |") {
		t.Fatalf("unexpected report:\n%s", out)
	}

	out = mustRun(t, "filter", csvPath, "--make", "Acura", "--min", "32000", "--max", "40000", "--format", "json")
	var doc struct {
		MatchedRows int        `json:"matched_rows"`
		Rows        [][]string `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("parse json: %v\n%s", err, out)
	}
	if doc.MatchedRows != 1 || doc.Rows[0][3] != "35000" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestCLI_FilterWritesOutputFile(t *testing.T) {
	home, csvPath := isolate(t)
	dest := filepath.Join(home, "report.md")
	out := mustRun(t, "filter", csvPath, "--stage", "Type=Sedan", "--search", "33", "--output", dest)
	if !strings.Contains(out, "✓ Report written") {
		t.Fatalf("stdout = %s", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "| BMW | 330i | Sedan | 40000 |") {
		t.Fatalf("report:\n%s", b)
	}
}

func TestCLI_FatalErrors(t *testing.T) {
	home, csvPath := isolate(t)

	_, _, err := runCmd(t, "filter", csvPath, "--profile", "category")
	var se *dataset.SchemaError
	if !errors.As(err, &se) || se.Missing[0] != "Category" {
		t.Fatalf("err = %v, want SchemaError naming Category", err)
	}

	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("Make,Model,Type,MSRP\nAcura,TSX,Sedan,abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err = runCmd(t, "filter", bad)
	var fe *dataset.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}

	_, _, err = runCmd(t, "filter", csvPath, "--min", "5", "--max", "1")
	var re *pipeline.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want RangeError", err)
	}

	if _, _, err = runCmd(t, "filter", filepath.Join(home, "nope.csv")); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestCLI_EmptySelectionIsNotAnError(t *testing.T) {
	_, csvPath := isolate(t)
	out := mustRun(t, "filter", csvPath, "--make", "Tesla", "--type", "Sedan")
	if !strings.Contains(out, "No data available for this choice") || !strings.Contains(out, "skipped") {
		t.Fatalf("report:\n%s", out)
	}
	_, errOut, err := runCmd(t, "choices", csvPath, "Type", "--make", "Tesla")
	if err != nil || !strings.Contains(errOut, "No data available") {
		t.Fatalf("choices on empty: err=%v stderr=%s", err, errOut)
	}
}

func TestCLI_ChoicesAndCompare(t *testing.T) {
	_, csvPath := isolate(t)
	out := mustRun(t, "choices", csvPath, "Type", "--make", "Acura")
	if out != "SUV\nSedan\n" {
		t.Fatalf("choices = %q", out)
	}

	out = mustRun(t, "compare", csvPath, "TSX", "330i", "--columns", "Make,MSRP")
	if !strings.Contains(out, "| Field | TSX | 330i |") || !strings.Contains(out, "| MSRP | 30000 | 40000 |") {
		t.Fatalf("compare:\n%s", out)
	}
	_, _, err := runCmd(t, "compare", csvPath, "TSX", "Civic")
	var nf *pipeline.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestCLI_ImportListAndFilterByName(t *testing.T) {
	_, csvPath := isolate(t)
	out := mustRun(t, "import", csvPath, "--name", "cars2004")
	if !strings.Contains(out, "✓ Imported cars2004") {
		t.Fatalf("import: %s", out)
	}
	out = mustRun(t, "list")
	if !strings.Contains(out, "cars2004 (3 rows") {
		t.Fatalf("list: %s", out)
	}
	out = mustRun(t, "filter", "cars2004", "--make", "BMW")
	if !strings.Contains(out, "| BMW | 330i | Sedan | 40000 |") {
		t.Fatalf("filter by name:\n%s", out)
	}
	mustRun(t, "remove", "cars2004")
	if out = mustRun(t, "list"); !strings.Contains(out, "(no datasets)") {
		t.Fatalf("list after remove: %s", out)
	}
}

func TestCLI_Chart(t *testing.T) {
	home, csvPath := isolate(t)
	dest := filepath.Join(home, "acura.png")
	out := mustRun(t, "chart", csvPath, "--make", "Acura", "--kind", "bar", "-o", dest)
	if !strings.Contains(out, "✓ Chart written") {
		t.Fatalf("chart: %s", out)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		t.Fatalf("chart file: %v", err)
	}
	_, errOut, err := runCmd(t, "chart", csvPath, "--make", "Tesla", "-o", filepath.Join(home, "none.png"))
	if err != nil || !strings.Contains(errOut, "No data available") {
		t.Fatalf("empty chart: err=%v stderr=%s", err, errOut)
	}
}

func TestCLI_Predict(t *testing.T) {
	home, csvPath := isolate(t)

	out := mustRun(t, "predict", csvPath)
	if !strings.Contains(out, "price prediction unavailable") {
		t.Fatalf("predict without features:\n%s", out)
	}

	var b strings.Builder
	b.WriteString("Make,Model,MSRP,Horsepower,EngineSize,Weight\n")
	for i := 0; i < 20; i++ {
		hp := 100 + (i*37)%150
		eng := 1 + (i*7)%5
		w := 2000 + (i*53)%900
		fmt.Fprintf(&b, "M%d,X%d,%d,%d,%d,%d\n", i, i, 1000+50*hp+2000*eng+3*w, hp, eng, w)
	}
	lin := filepath.Join(home, "linear.csv")
	if err := os.WriteFile(lin, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	out = mustRun(t, "predict", lin, "--profile", "regression", "--horsepower", "200", "--engine-size", "3", "--weight", "3000")
	if !strings.Contains(out, "R²: 1.0000") || !strings.Contains(out, "$26000") {
		t.Fatalf("predict:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home, _ := isolate(t)
	mustRun(t, "config", "set", "chart_bins", "12")
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "chart_bins: 12") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".msrp", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if _, _, err := runCmd(t, "config", "set", "chart_bins", "zero"); err == nil {
		t.Fatal("expected error for non-numeric chart_bins")
	}
}
