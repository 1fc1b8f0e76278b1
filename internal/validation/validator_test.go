// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package validation

import (
	"strings"
	"testing"
)

type dayRequest struct {
	Date    string  `validate:"required,daystamp"`
	Epsilon float64 `validate:"required"`
}

func TestValidateStructAccepts(t *testing.T) {
	t.Parallel()

	valid := []dayRequest{
		{Date: "2026-08-30", Epsilon: 1.0},
		{Date: "2024-02-29", Epsilon: 0.5}, // leap day
		{Date: "1999-12-31", Epsilon: 10},
	}

	for _, req := range valid {
		if err := ValidateStruct(req); err != nil {
			t.Errorf("ValidateStruct(%+v) = %v, want nil", req, err)
		}
	}
}

func TestValidateStructRejectsBadDates(t *testing.T) {
	t.Parallel()

	bad := []string{
		"",
		"not-a-date",
		"2026-02-30", // impossible day
		"2023-02-29", // not a leap year
		"2026-13-01",
		"2026-8-30",  // missing zero padding
		"30-08-2026", // wrong field order
		"2026/08/30",
		"2026-08-30T00:00:00Z",
	}

	for _, date := range bad {
		err := ValidateStruct(dayRequest{Date: date, Epsilon: 1.0})
		if err == nil {
			t.Errorf("ValidateStruct accepted date %q", date)
			continue
		}

		errs := err.Errors()
		if len(errs) != 1 {
			t.Errorf("date %q: got %d errors, want 1", date, len(errs))
			continue
		}
		if errs[0].Field() != "Date" {
			t.Errorf("date %q: failed field = %q, want Date", date, errs[0].Field())
		}
	}
}

func TestValidateStructRejectsMissingEpsilon(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(dayRequest{Date: "2026-08-30"})
	if err == nil {
		t.Fatal("ValidateStruct accepted zero epsilon")
	}
	if got := err.Errors()[0].Tag(); got != "required" {
		t.Errorf("tag = %q, want required", got)
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(dayRequest{Date: "bogus", Epsilon: 1.0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "YYYY-MM-DD") {
		t.Errorf("Message = %q, want mention of YYYY-MM-DD", apiErr.Message)
	}
	if apiErr.Details["field"] != "Date" {
		t.Errorf("Details[field] = %v, want Date", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(dayRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d field entries, want 2", len(fields))
	}
}
