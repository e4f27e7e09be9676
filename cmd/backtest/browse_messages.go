package main

// RunsLoadedMsg carries the runs found in a results folder.
type RunsLoadedMsg struct {
	Folder string
	Runs   []RunEntry
}

// LoadErrorMsg indicates that a results folder could not be read.
type LoadErrorMsg struct {
	Err error
}
