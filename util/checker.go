package util

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v63/github"
	"github.com/ulmus/onweekdays/config"
	"golang.org/x/mod/semver"
)

const (
	githubOwner = "ulmus"
	githubRepo  = "onweekdays"
)

// UpdateInfo holds the outcome of the update check.
type UpdateInfo struct {
	UpdateAvailable bool
	CurrentVersion  string
	LatestVersion   string
	ReleaseURL      string
}

// CheckForUpdates asks GitHub for the latest release and compares it with config.AppVersion.
// A nil client uses http.DefaultClient.
func CheckForUpdates(ctx context.Context, client *http.Client) (*UpdateInfo, error) {
	gh := github.NewClient(client)

	release, _, err := gh.Repositories.GetLatestRelease(ctx, githubOwner, githubRepo)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release: %w", err)
	}

	info := &UpdateInfo{
		CurrentVersion: canonicalVersion(config.AppVersion),
		LatestVersion:  canonicalVersion(release.GetTagName()),
		ReleaseURL:     release.GetHTMLURL(),
	}
	if !semver.IsValid(info.LatestVersion) {
		return nil, fmt.Errorf("latest release tag %q is not a semantic version", release.GetTagName())
	}
	info.UpdateAvailable = semver.Compare(info.LatestVersion, info.CurrentVersion) > 0
	return info, nil
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
