// Package constants defines the published property key, lookup file
// locations, supported game identifiers, and default timeout/interval values
// used throughout the plugin and its host runner.
package constants

import "time"

const (
	// PropertyKey is the host property the resolved car model is published under.
	PropertyKey = "FHCarModel"
	// PropertyOwner is the owner name passed to the host property store.
	PropertyOwner = "IDsToCarModels"
)

const (
	// LookupDir is the directory holding the car name lookup tables.
	LookupDir = "LookupTables"
	// SharedLookupFile is the lookup table shared by every Forza game.
	SharedLookupFile = "FM8.CarNames.csv"
	// PerGameLookupSuffix is appended to the game name to build a per-game lookup file name.
	PerGameLookupSuffix = ".CarNames.csv"
)

const (
	// GameFH4 is the host's game name for Forza Horizon 4.
	GameFH4 = "FH4"
	// GameFH5 is the host's game name for Forza Horizon 5.
	GameFH5 = "FH5"
	// GameFM7 is the host's game name for Forza Motorsport 7.
	GameFM7 = "FM7"
)

// DefaultGames is the supported game set when none is configured.
var DefaultGames = []string{GameFH4, GameFH5}

// CarIDSeparator splits a car-id label into tokens; the numeric id is token 1.
const CarIDSeparator = "_"

const (
	// DefaultServerAddr is the listen address of the property HTTP server.
	DefaultServerAddr = ":8080"
	// DefaultChatCommand is the chat command that replies with the current car.
	DefaultChatCommand = "!car"
)

const (
	// FeedPingInterval is the interval between keep-alive pings on the telemetry feed.
	FeedPingInterval = 30 * time.Second
	// FeedPingTimeout bounds a single keep-alive ping.
	FeedPingTimeout = 10 * time.Second
	// FeedReadLimit caps the size of a single telemetry frame.
	FeedReadLimit = 64 << 10
	// DefaultFeedReconnectMin is the first backoff delay after a feed disconnect.
	DefaultFeedReconnectMin = 1 * time.Second
	// DefaultFeedReconnectMax caps the feed reconnect backoff.
	DefaultFeedReconnectMax = 30 * time.Second
	// DefaultGracefulShutdownTimeout is the timeout for graceful HTTP server shutdown.
	DefaultGracefulShutdownTimeout = 5 * time.Second
	// CheckWorkers is the number of concurrent lookup loads in check mode.
	CheckWorkers = 4
)
