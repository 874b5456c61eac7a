package config

import "strings"

// AppVersion is the version of the application, set with -ldflags at build time.
var AppVersion = "0.3.0"

// AppName is the name of the application.
const AppName = "OnWeekdays"

// AppID is the fyne application ID, also the namespace for user preferences.
const AppID = "cz.ulmus.onweekdays"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// Origin defaults.
const (
	DefaultEndpoint        = "http://onweekdays.ulmus.cz"
	DefaultPhotoPath       = "/api/photo/random"
	DefaultConnectivityURL = "https://connectivitycheck.gstatic.com/generate_204"
	DefaultAPIAddr         = "127.0.0.1:49453"
)
