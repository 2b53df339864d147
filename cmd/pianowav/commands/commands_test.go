package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testSheet plays 2s at Adagio and 1s at Allegro.
const testSheet = `Adagio,Allegro
"a
C4,QN-D4,QN
C3,HN
`

type testEnv struct {
	home   string
	output string
	cache  string
	config string
}

// setupTestEnv points the CLI at a temp home with an 8 kHz config.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		home:   dir,
		output: filepath.Join(dir, "out"),
		cache:  filepath.Join(dir, "cache"),
		config: filepath.Join(dir, ".pianowav", "config.yaml"),
	}
	t.Setenv(homeEnv, dir)
	writeFile(t, env.config, "sample_rate: 8000\n"+
		"output: "+env.output+"\n"+
		"cache:\n"+
		"  enabled: true\n"+
		"  dir: "+env.cache+"\n")
	return env
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	verbose = false
	configFile = ""
	formatOutput = "table"
	outputFile = ""

	// Drain concurrently so large reports cannot fill the pipe.
	var outBuf, errBuf bytes.Buffer
	done := make(chan struct{}, 2)
	go func() { outBuf.ReadFrom(rOut); done <- struct{}{} }()
	go func() { errBuf.ReadFrom(rErr); done <- struct{}{} }()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	<-done
	<-done
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		stderr += err.Error()
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
