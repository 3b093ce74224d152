package main

import "testing"

func TestParseArgsHelp(t *testing.T) {
	opts, err := parseArgs([]string{"-h"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts != nil {
		t.Fatalf("expected nil opts for -h, got %+v", opts)
	}
}

func TestParseArgsRequiresEntryFile(t *testing.T) {
	_, err := parseArgs([]string{"-s"})
	if err == nil {
		t.Fatalf("expected an error when no entry file is given")
	}
}

func TestParseArgsCollectsFlags(t *testing.T) {
	opts, err := parseArgs([]string{"-o", "out", "-c", "out.c", "-e2", "-s", "-n", "-d", "-l", "/lib", "main.oc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.OutputExecutable != "out" || opts.OutputC != "out.c" || opts.ErrorDetail != 2 {
		t.Fatalf("unexpected opts: %+v", opts)
	}
	if !opts.Silent || !opts.NoInvokeCC || !opts.DebugLineDirectives {
		t.Fatalf("expected all boolean flags set: %+v", opts)
	}
	if opts.LibraryRoot != "/lib" || opts.EntryFile != "main.oc" {
		t.Fatalf("unexpected opts: %+v", opts)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	_, err := parseArgs([]string{"--bogus", "main.oc"})
	if err == nil {
		t.Fatalf("expected an error for an unknown flag")
	}
}
