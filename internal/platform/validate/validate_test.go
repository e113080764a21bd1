// Copyright (c) 2026 Meetwise. All rights reserved.
// Author: platform@meetwise.app

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetwise/meetwise/internal/platform/apperr"
)

/*
TestValidator_PassingChain verifies a chain where every rule passes yields no
error.
*/
func TestValidator_PassingChain(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("email", "alex@meetwise.app").
		Email("email", "alex@meetwise.app").
		MinLen("password", "hunter2!hunter2!", 8).
		MaxLen("display_name", "Alex", 100).
		OneOf("role", "member", "member", "project_manager").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_CollectsAllFailures verifies failures accumulate across the
chain into one VALIDATION_ERROR carrying every field.
*/
func TestValidator_CollectsAllFailures(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("email", "  ").
		MinLen("password", "short", 8).
		UUID("project_id", "not-a-uuid").
		Custom("attendees", true, "Maximum 50 attendees per meeting").
		Err()

	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, appError.Details, 4)

	fields := make([]string, 0, len(appError.Details))
	for _, detail := range appError.Details {
		fields = append(fields, detail.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password", "project_id", "attendees"}, fields)
}

/*
TestValidator_Rules spot-checks each rule's accept/reject boundary.
*/
func TestValidator_Rules(t *testing.T) {
	testCases := []struct {
		name  string
		chain func(v *Validator) *Validator
		fails bool
	}{
		{name: "required rejects whitespace", chain: func(v *Validator) *Validator { return v.Required("f", " \t ") }, fails: true},
		{name: "required accepts value", chain: func(v *Validator) *Validator { return v.Required("f", "x") }, fails: false},
		{name: "email rejects bare domain", chain: func(v *Validator) *Validator { return v.Email("f", "meetwise.app") }, fails: true},
		{name: "email accepts address", chain: func(v *Validator) *Validator { return v.Email("f", "a@b.co") }, fails: false},
		{name: "maxlen counts runes not bytes", chain: func(v *Validator) *Validator { return v.MaxLen("f", "héllo", 5) }, fails: false},
		{name: "maxlen rejects overflow", chain: func(v *Validator) *Validator { return v.MaxLen("f", "toolong", 3) }, fails: true},
		{name: "minlen rejects short", chain: func(v *Validator) *Validator { return v.MinLen("f", "ab", 3) }, fails: true},
		{name: "uuid accepts uppercase", chain: func(v *Validator) *Validator {
			return v.UUID("f", "0190B7C2-9C7E-7B6A-8F3D-2A44D1E0C9AB")
		}, fails: false},
		{name: "uuid rejects garbage", chain: func(v *Validator) *Validator { return v.UUID("f", "1234") }, fails: true},
		{name: "oneof rejects outsider", chain: func(v *Validator) *Validator { return v.OneOf("f", "x", "a", "b") }, fails: true},
		{name: "custom passes when condition false", chain: func(v *Validator) *Validator { return v.Custom("f", false, "nope") }, fails: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			v := testCase.chain(&Validator{})
			assert.Equal(t, testCase.fails, v.HasErrors())
		})
	}
}

/*
TestRequiredError verifies the single-field shortcut produces the same error
shape as a full chain.
*/
func TestRequiredError(t *testing.T) {
	err := RequiredError("refresh_token", "This field is required")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, "refresh_token", appError.Details[0].Field)
}
