package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJudgeLoginRequestSurveyID(t *testing.T) {
	cases := map[string]SurveyID{
		`{"requestedSurveyID":"abc"}`: "abc",
		`{"requestedSurveyID":42}`:    "42",
		`{"requestedSurveyID":null}`:  "",
		`{}`:                          "",
		`{"requestedSurveyID":0}`:     "",
		`{"requestedSurveyID":0.0}`:   "",
		`{"requestedSurveyID":false}`: "",
		`{"requestedSurveyID":""}`:    "",
		`{"requestedSurveyID":"0"}`:   "0",
		`{"requestedSurveyID":true}`:  "true",
	}
	for body, want := range cases {
		var req JudgeLoginRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, want, req.RequestedSurveyID, body)
	}

	var req JudgeLoginRequest
	assert.Error(t, json.Unmarshal([]byte(`{"requestedSurveyID":{"x":1}}`), &req))
}

func TestSessionResponseJudgeEmailIsNull(t *testing.T) {
	raw, err := json.Marshal(SessionResponse{UserID: "j1", Role: "judge"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":null,"userid":"j1","role":"judge"}`, string(raw))
}
