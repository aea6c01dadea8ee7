package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is the running release, set with -ldflags "-X .../pkg/cli.Version=1.2.3".
var Version = "0.1.0"

// Repo is the GitHub repository releases are fetched from.
const Repo = "Fepozopo/docfix"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// latestRelease picks the highest published, non-prerelease semver release
// from a GitHub releases listing, with the asset built for goos/goarch.
// It returns nil when no release qualifies.
func latestRelease(releases []githubRelease, goos, goarch string) *selfupdate.Release {
	var best *selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		rel := &selfupdate.Release{Version: v}
		for _, a := range r.Assets {
			n := strings.ToLower(a.Name)
			if strings.Contains(n, goos) && strings.Contains(n, goarch) {
				rel.AssetURL = a.BrowserDownloadURL
				break
			}
		}
		if best == nil || v.GT(best.Version) {
			best = rel
		}
	}
	return best
}

// fetchReleases lists the releases of repo through the GitHub API.
func fetchReleases(repo string) ([]githubRelease, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(fmt.Sprintf("https://api.github.com/repos/%s/releases", repo))
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}
	return releases, nil
}

// CheckForUpdates reports the latest release and, after confirmation on in
// (or unconditionally when yes is set), replaces the running binary with it.
func CheckForUpdates(out io.Writer, in io.Reader, yes bool) error {
	fmt.Fprintf(out, "Current version: %s\n", Version)
	releases, err := fetchReleases(Repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	latest := latestRelease(releases, runtime.GOOS, runtime.GOARCH)
	if latest == nil {
		fmt.Fprintf(out, "No releases found for %s.\n", Repo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)

	current, err := semver.Parse(strings.TrimPrefix(Version, "v"))
	if err != nil {
		fmt.Fprintf(out, "warning: could not parse current version %q: %v\n", Version, err)
	} else if !latest.Version.GT(current) {
		fmt.Fprintf(out, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(out, "Version %s is available but has no build for %s/%s.\n", latest.Version, runtime.GOOS, runtime.GOARCH)
		return nil
	}
	if !yes {
		fmt.Fprintf(out, "A new version (%s) is available. Update now? (y/N): ", latest.Version)
		line, _ := bufio.NewReader(in).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Update cancelled.")
			return nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(out, "Updated to %s.\n", latest.Version)
	return nil
}
