package base

import (
	"fmt"
	"time"

	"github.com/relex/client-logger/util"
)

// ClientTimeFormat is the ISO-8601 format of LogMessage.ClientTime, always in UTC with milliseconds
const ClientTimeFormat = "2006-01-02T15:04:05.000Z"

// Trace is one server-bound log record
type Trace struct {
	Topic   string `json:"topic"`
	Level   string `json:"level"`
	Message string `json:"message"` // JSON-serialized LogMessage
}

// LogMessage is the envelope serialized into Trace.Message
type LogMessage struct {
	ClientTime       string      `json:"clientTime"`
	ClientID         string      `json:"clientId"`
	Message          string      `json:"message"`
	OriginAppName    string      `json:"originAppName,omitempty"`
	OriginAppVersion string      `json:"originAppVersion,omitempty"`
	OriginAppID      string      `json:"originAppId,omitempty"`
	Details          interface{} `json:"details,omitempty"`
}

// OriginApp identifies a parent application embedding the logger
type OriginApp struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	ID      string `yaml:"id"`
}

// NewLogMessage builds the envelope for a log call made at the given time
//
// Errors given as details are replaced by their messages, since they would serialize to an empty object
func NewLogMessage(clientTime time.Time, clientID string, origin OriginApp, message string, details interface{}) LogMessage {
	if err, ok := details.(error); ok && err != nil {
		details = err.Error()
	}
	msg := LogMessage{
		ClientTime: clientTime.UTC().Format(ClientTimeFormat),
		ClientID:   clientID,
		Message:    message,
		Details:    details,
	}
	if origin.Name != "" {
		msg.OriginAppName = origin.Name
		msg.OriginAppVersion = origin.Version
		msg.OriginAppID = origin.ID
	}
	return msg
}

// NewTrace serializes the envelope into a trace of the given topic and level
//
// Details that cannot be serialized (e.g. channels or funcs inside) are replaced by their printed form
func NewTrace(topic string, level LogLevel, msg LogMessage) Trace {
	data, err := util.MarshalJSON(msg)
	if err != nil {
		msg.Details = fmt.Sprintf("%+v", msg.Details)
		data, err = util.MarshalJSON(msg)
		if err != nil {
			data = []byte(fmt.Sprintf(`{"message":%q}`, msg.Message))
		}
	}
	return Trace{
		Topic:   topic,
		Level:   level.TraceLevel(),
		Message: string(data),
	}
}
