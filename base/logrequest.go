package base

import (
	"fmt"
)

// AppInfo identifies the application sending logs
type AppInfo struct {
	AppID      string `json:"appId"`
	AppVersion string `json:"appVersion"`
}

// LogRequest is the body of a log upload without credentials, as saved for later delivery
type LogRequest struct {
	App    AppInfo `json:"app"`
	Traces []Trace `json:"traces"`
}

// SendLogRequest is a complete request including the access token
type SendLogRequest struct {
	AccessToken string `json:"accessToken"`
	LogRequest
}

// WithToken attaches an access token to the saved request
func (request LogRequest) WithToken(accessToken string) SendLogRequest {
	return SendLogRequest{
		AccessToken: accessToken,
		LogRequest:  request,
	}
}

func (request SendLogRequest) String() string {
	return fmt.Sprintf("app=%s/%s traces=%d", request.App.AppID, request.App.AppVersion, len(request.Traces))
}
