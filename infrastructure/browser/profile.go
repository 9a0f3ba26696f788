package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"authflow_automation/domain/entities"
)

// Profile is an isolated user-data directory owned by one session
type Profile struct {
	Dir string
	fs  afero.Fs
}

// profilePrefix - returns the directory name prefix shared by a worker's profiles
func profilePrefix(browser entities.BrowserKind, worker string) string {
	return fmt.Sprintf("%s-user-data-%s-", browser, worker)
}

// NewProfile - creates <browser>-user-data-<worker>-<pid>-<uuid> under root
func NewProfile(fs afero.Fs, root string, browser entities.BrowserKind, worker string) (*Profile, error) {
	name := fmt.Sprintf("%s%d-%s", profilePrefix(browser, worker), os.Getpid(), uuid.NewString())
	dir := filepath.Join(root, name)
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create user data directory: %w", err)
	}
	return &Profile{Dir: dir, fs: fs}, nil
}

// Remove deletes the directory and everything the browser wrote into it
func (p *Profile) Remove() error {
	return p.fs.RemoveAll(p.Dir)
}

// CleanStaleProfiles removes profiles the same worker left behind in earlier
// processes. Profiles of the current process are kept.
func CleanStaleProfiles(fs afero.Fs, root string, browser entities.BrowserKind, worker string, log logrus.FieldLogger) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return
	}

	prefix := profilePrefix(browser, worker)
	own := strconv.Itoa(os.Getpid()) + "-"
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(strings.TrimPrefix(name, prefix), own) {
			continue
		}
		if err := fs.RemoveAll(filepath.Join(root, name)); err != nil {
			log.WithError(err).Warnf("Failed to clean up directory %s", name)
		}
	}
}
