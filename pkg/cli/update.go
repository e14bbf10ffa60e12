package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/sirupsen/logrus"
)

const defaultRepo = "Fepozopo/pixfx"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// Updater checks GitHub releases for a newer build and replaces the
// running executable.
type Updater struct {
	Repo    string
	APIBase string // defaults to https://api.github.com
	Client  *http.Client
	In      io.Reader
	Out     io.Writer
	Logger  *logrus.Logger

	// apply replaces the executable; swapped out in tests.
	apply func(assetURL, exe string) error
}

func (u *Updater) defaults() {
	if u.Repo == "" {
		u.Repo = defaultRepo
	}
	if u.APIBase == "" {
		u.APIBase = "https://api.github.com"
	}
	if u.Client == nil {
		u.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if u.Out == nil {
		u.Out = io.Discard
	}
	if u.Logger == nil {
		u.Logger = logrus.New()
		u.Logger.SetOutput(io.Discard)
	}
	if u.apply == nil {
		u.apply = selfupdate.UpdateTo
	}
}

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

// Latest returns the highest semver-tagged, published, non-prerelease
// release. Tags that merely contain a version (e.g. "pixfx-v1.2.3") are
// accepted. found is false when no release qualifies.
func (u *Updater) Latest() (rel *selfupdate.Release, found bool, err error) {
	u.defaults()
	apiURL := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(u.APIBase, "/"), u.Repo)
	resp, err := u.Client.Get(apiURL)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	type candidate struct {
		ver      semver.Version
		assetURL string
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		if match == "" {
			continue
		}
		v, perr := semver.Parse(strings.TrimPrefix(match, "v"))
		if perr != nil {
			continue
		}
		candidates = append(candidates, candidate{ver: v, assetURL: pickAsset(r)})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	best := candidates[0]
	return &selfupdate.Release{Version: best.ver, AssetURL: best.assetURL}, true, nil
}

// pickAsset prefers an asset that looks like a platform binary and
// otherwise falls back to the first one.
func pickAsset(r githubRelease) string {
	for _, a := range r.Assets {
		name := strings.ToLower(a.Name)
		for _, hint := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
			if strings.Contains(name, hint) {
				return a.BrowserDownloadURL
			}
		}
	}
	if len(r.Assets) > 0 {
		return r.Assets[0].BrowserDownloadURL
	}
	return ""
}

// Check compares the running version with the latest release and, after
// confirmation (or immediately when assumeYes), installs it.
func (u *Updater) Check(current string, assumeYes bool) error {
	u.defaults()
	latest, found, err := u.Latest()
	fmt.Fprintf(u.Out, "Current version: %s\n", current)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found {
		fmt.Fprintf(u.Out, "No releases found for %s.\n", u.Repo)
		return nil
	}
	fmt.Fprintf(u.Out, "Latest version: %s\n", latest.Version)

	currentVer, perr := ParseVersion(current)
	if perr != nil {
		u.Logger.WithError(perr).WithField("version", current).Warn("could not parse current version")
	} else if !latest.Version.GT(currentVer) {
		fmt.Fprintf(u.Out, "You are already running the latest version: %s.\n", currentVer)
		return nil
	}

	if latest.AssetURL == "" {
		fmt.Fprintf(u.Out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	if !assumeYes {
		fmt.Fprintf(u.Out, "A new version (%s) is available. Update now? (y/N): ", latest.Version)
		answer := ""
		if u.In != nil {
			line, _ := bufio.NewReader(u.In).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(line))
		}
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(u.Out, "Update cancelled.")
			return nil
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	u.Logger.WithFields(logrus.Fields{"version": latest.Version.String(), "asset": latest.AssetURL}).Info("updating")
	if err := u.apply(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(u.Out, "Updated to version %s. Restart pixfx to use it.\n", latest.Version)
	return nil
}
