// Package feed implements the telemetry feed client: a WebSocket connection
// to the telemetry source that delivers one JSON frame per host data-update
// cycle, with keep-alive pings and reconnection with exponential backoff.
package feed

import (
	"errors"
	"fmt"

	"github.com/Guliveer/fh-car-models/internal/jsonutil"
	"github.com/Guliveer/fh-car-models/internal/model"
)

// Frame field names. Both camelCase and the host's PascalCase spellings are accepted.
var (
	keysGameRunning = []string{"gameRunning", "GameRunning"}
	keysGameName    = []string{"gameName", "GameName"}
	keysOldData     = []string{"oldData", "OldData"}
	keysNewData     = []string{"newData", "NewData"}
	keysCarID       = []string{"carId", "CarId", "CarID"}
)

// ErrNotAFrame is returned by DecodeFrame for messages that carry no game state.
var ErrNotAFrame = errors.New("message is not a telemetry frame")

// DecodeFrame converts a decoded JSON message into a GameData. A message
// must carry the running flag to count as a frame. Missing data objects
// leave OldData/NewData nil; numeric car ids are formatted as strings.
func DecodeFrame(raw map[string]any) (*model.GameData, error) {
	if raw == nil {
		return nil, ErrNotAFrame
	}

	runningKey := ""
	for _, key := range keysGameRunning {
		if _, ok := raw[key]; ok {
			runningKey = key
			break
		}
	}
	if runningKey == "" {
		return nil, fmt.Errorf("%w: missing gameRunning", ErrNotAFrame)
	}

	data := &model.GameData{
		GameRunning: jsonutil.BoolFromMap(raw, runningKey),
		GameName:    jsonutil.FirstString(raw, keysGameName...),
		OldData:     decodeStatus(raw, keysOldData),
		NewData:     decodeStatus(raw, keysNewData),
	}
	return data, nil
}

func decodeStatus(raw map[string]any, keys []string) *model.StatusData {
	for _, key := range keys {
		if m, ok := jsonutil.MapFromMap(raw, key); ok {
			return &model.StatusData{CarID: jsonutil.FirstString(m, keysCarID...)}
		}
	}
	return nil
}
