package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hpstore/internal/accessor"
	"github.com/roach88/hpstore/internal/storeerr"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(CountResult{Count: 2}, "2")
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"count": float64(2)}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "timestamp not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "timestamp not found", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(CountResult{Count: 2}, "2")
	require.NoError(t, err)
	assert.Equal(t, "2\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    buf,
		ErrWriter: errBuf,
	}

	err := formatter.Error("PARSE", "column t2 is not a number", nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
	assert.Contains(t, errBuf.String(), "Error [PARSE]")
	assert.Contains(t, errBuf.String(), "column t2 is not a number")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("IO", "read failed", map[string]string{"resource": "timeseries.csv"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [IO]")
	assert.Contains(t, buf.String(), "Details:")
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

			formatter.VerboseLog("Processing %s", "timeseries.csv")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Processing timeseries.csv")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"not found", storeerr.NotFound("timeseries.csv", "2099", "timestamp not found"), "NOT_FOUND", ExitFailure},
		{"wrapped not found", fmt.Errorf("replay entry x: %w", storeerr.NotFound("timeseries.csv", "2099", "timestamp not found")), "NOT_FOUND", ExitFailure},
		{"parse", storeerr.Parse("timeseries.csv", "2025", "column t2 is empty", nil), "PARSE", ExitCommandError},
		{"io", storeerr.IO("timeseries.csv", "write failed", fs.ErrPermission), "IO", ExitCommandError},
		{"no journal", accessor.ErrNoJournal, ErrCodeNoJournal, ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, ExitCommandError},
		{"usage", NewExitError(ExitCommandError, "unknown column"), ErrCodeUsage, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Fail(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.True(t, exitErr.reported)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "x"))))
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to open journal", cause)
	assert.Equal(t, "failed to open journal: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "bad", NewExitError(ExitCommandError, "bad").Error())
}

func TestNumber_MarshalJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{45.5, `45.5`},
		{120, `120`},
		{math.NaN(), `"nan"`},
		{math.Inf(1), `"inf"`},
		{math.Inf(-1), `"-inf"`},
	}

	for _, tt := range tests {
		got, err := json.Marshal(Number(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}
