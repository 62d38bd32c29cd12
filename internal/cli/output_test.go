package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(CountResult{Count: 4})
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","data":{"count":4,"exact":false}}`+"\n", buf.String())
}

func TestOutputFormatter_JSONNoHTMLEscaping(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"sql": "a < b && c > d"}))
	assert.Contains(t, buf.String(), "a < b && c > d")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeQuery, "query failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E004", resp.Error.Code)
	assert.Equal(t, "query failed", resp.Error.Message)
	assert.Nil(t, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(LoadResult{Documents: 2500, Chunks: 3, FirstID: 1, LastID: 2500})
	require.NoError(t, err)
	assert.Equal(t, "loaded 2500 documents in 3 chunks (ids 1-2500)\n", buf.String())
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    out,
		ErrWriter: errOut,
	}

	err := formatter.Error(ErrCodeOpen, "failed to open database", nil)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, "Error [E002]: failed to open database\n", errOut.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"table": "docs"}
	err := formatter.Error(ErrCodeConfig, "bad config", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}
	cause := errors.New("disk full")

	err := formatter.Fail(ExitFailure, ErrCodeWrite, "load stopped", cause)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, buf.String(), `"message":"load stopped: disk full"`)

	err = formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid --batch -1", nil)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Loading %s", "people.jsonl")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Loading people.jsonl")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.False(t, IsReported(wrapped))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{"text", "text"},
		{int64(-3), "-3"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
		{[]byte{0xde, 0xad}, "x'dead'"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.in))
	}
}

func TestQueryResult_NoColumns(t *testing.T) {
	assert.Equal(t, "(no columns)", QueryResult{}.String())
}

func TestTermProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewTermProgress(buf)

	p.Start(2500)
	p.Add(1000)
	p.Finish()
	assert.Equal(t, "\rloading: 0/2500 documents (0%)\rloading: 1000/2500 documents (40%)\n", buf.String())

	buf.Reset()
	p.Start(0)
	p.Add(7)
	assert.Equal(t, "\rloading: 0 documents\rloading: 7 documents", buf.String())
}
