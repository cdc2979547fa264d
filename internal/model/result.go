package model

import "encoding/json"

// Status values reported in a Result.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Result is the record printed for every run, successful or not.
//
//	{"status":"success","files_written":["out/abc-high-Qm.png"]}
//	{"status":"failure","error":"404 Not Found"}
type Result struct {
	Status       string
	FilesWritten []string
	Error        string
}

// Success reports the written files.
func Success(files []string) Result {
	return Result{Status: StatusSuccess, FilesWritten: files}
}

// Failure reports err's message.
func Failure(err error) Result {
	return Result{Status: StatusFailure, Error: err.Error()}
}

// MarshalJSON emits files_written for successes, always as a list, and
// error for failures.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status == StatusFailure {
		return json.Marshal(struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}{r.Status, r.Error})
	}
	files := r.FilesWritten
	if files == nil {
		files = []string{}
	}
	return json.Marshal(struct {
		Status       string   `json:"status"`
		FilesWritten []string `json:"files_written"`
	}{r.Status, files})
}
