package labeler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanText(t *testing.T) {
	f := ScanText("a.txt", "Intro.\nWe report Scope 3 emissions of 120 tonnes.")
	assert.True(t, f.HasScope3)
	assert.Equal(t, 4, f.Count)
	assert.Equal(t, []string{"basic", "reporting", "emissions", "value"}, f.Patterns)
	require.Len(t, f.Samples, 3)
	assert.Equal(t, "basic", f.Samples[0].Pattern)
	assert.NotContains(t, f.Samples[0].Context, "\n")
	assert.Contains(t, f.Samples[0].Context, "Scope 3")
}

func TestScanText_RomanAndNumeric(t *testing.T) {
	f := ScanText("b.txt", "Our Scope III and scope three figures.")
	assert.Equal(t, []string{"roman", "numeric"}, f.Patterns)
	assert.Equal(t, 2, f.Count)
}

func TestScanText_AllThree(t *testing.T) {
	f := ScanText("c.txt", "Scope 1, scope 2 and scope 3 were measured.")
	assert.Contains(t, f.Patterns, "all_three")
}

func TestScanText_None(t *testing.T) {
	f := ScanText("d.txt", "Nothing relevant.")
	assert.False(t, f.HasScope3)
	assert.Zero(t, f.Count)
	assert.Equal(t, []string{"d.txt", "false", "0", "none"}, f.Record())
}

func TestAround_LimitsContext(t *testing.T) {
	text := strings.Repeat("a", 300) + "scope 3" + strings.Repeat("b", 300)
	ctx := around(text, []int{300, 307})
	assert.Len(t, ctx, 200)
	assert.True(t, strings.HasPrefix(ctx, strings.Repeat("a", 100)+"scope 3"))
}

func TestDiagnose(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b_report.txt": "Our Scope III and scope three figures.",
		"a_report.txt": "We report Scope 3 emissions of 120 tonnes.",
		"c_report.txt": "Nothing relevant.",
		"notes.md":     "scope 3",
	}
	for name, text := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}

	findings, err := Diagnose(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	assert.Equal(t, "a_report.txt", findings[0].File)
	assert.Equal(t, "b_report.txt", findings[1].File)
	assert.False(t, findings[2].HasScope3)

	out := filepath.Join(dir, "out", "diagnostics.csv")
	require.NoError(t, WriteDiagnostics(out, findings))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"file,has_scope3,count,patterns\n"+
			"a_report.txt,true,4,\"basic,reporting,emissions,value\"\n"+
			"b_report.txt,true,2,\"roman,numeric\"\n"+
			"c_report.txt,false,0,none\n",
		string(data))
}

func TestDiagnose_MissingDir(t *testing.T) {
	_, err := Diagnose(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
