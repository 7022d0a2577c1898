// Package harness runs memy scenarios end to end.
//
// A scenario is a YAML file naming the files and directories to create, the
// configuration overrides to apply and a sequence of steps: note paths, list
// them, advance the clock, remove or create paths. Each scenario runs in a
// fresh temporary workspace against a real store, with a fake clock starting
// at testutil.Epoch, so every run produces the same trace.
//
// The trace records each step with paths relative to the workspace. It is
// serialized as canonical JSON (sorted keys, NFC-normalized strings) and
// compared with a golden file:
//
//	go test ./internal/harness -update
//
// regenerates the golden files under testdata/golden.
package harness
