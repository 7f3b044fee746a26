package dto

import "encoding/json"

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// JudgeLoginRequest payload for judge admission.
type JudgeLoginRequest struct {
	RequestedSurveyID SurveyID `json:"requestedSurveyID" form:"requestedSurveyID"`
}

// SessionResponse is returned by every login and refresh endpoint. Email is
// null for judges.
type SessionResponse struct {
	Email  *string `json:"email"`
	UserID string  `json:"userid"`
	Role   string  `json:"role"`
}

// SurveyID accepts the requested survey id as a JSON string or number.
// Values a client sends as "no survey" (null, false, the number 0 and the
// empty string) decode to the empty SurveyID. The string "0" is an id.
type SurveyID string

func (s *SurveyID) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = SurveyID(str)
		return nil
	}
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*s = ""
		if flag {
			*s = "true"
		}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	if f, err := num.Float64(); err == nil && f == 0 {
		*s = ""
		return nil
	}
	*s = SurveyID(num.String())
	return nil
}
