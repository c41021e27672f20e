package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"curator/internal/classify"
	"curator/internal/config"
	"curator/internal/fileutil"
	"curator/internal/logging"
	"curator/internal/services"
)

// freeSpaceMargin keeps a buffer beyond the file size so a move never
// fills the target filesystem to the last byte.
const freeSpaceMargin = 64 << 20

// Organizer moves classified files and their sidecars into the library
// tree, or into the unsorted sink for unresolved items.
type Organizer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds an Organizer.
func New(cfg *config.Config, logger *slog.Logger) *Organizer {
	return &Organizer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "organizer"),
	}
}

// Place moves sourcePath to its library destination and drags any sidecar
// companions along. It returns the final main-file path. Existing targets
// get a numeric suffix, never overwritten.
func (o *Organizer) Place(ctx context.Context, sourcePath string, result classify.Result) (string, error) {
	log := logging.WithContext(ctx, o.logger)

	target := o.Destination(sourcePath, result)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", services.Wrap(services.ErrValidation, "organizing", "create directory", "create destination directory", err)
	}
	if err := ensureFreeSpace(sourcePath, filepath.Dir(target)); err != nil {
		return "", err
	}
	target = resolveConflict(target)

	if err := fileutil.MoveFile(sourcePath, target); err != nil {
		return "", services.Wrap(services.ErrTransient, "organizing", "move file", fmt.Sprintf("move %s", filepath.Base(sourcePath)), err)
	}
	o.moveSidecars(sourcePath, target, log)
	o.pruneSourceDir(filepath.Dir(sourcePath), log)

	log.Info("placed file",
		logging.String(logging.FieldDecision, string(result.Kind)),
		logging.String("source", filepath.Base(sourcePath)),
		logging.String("final_path", target))
	return target, nil
}

// moveSidecars relocates companions sharing the source stem. Best effort:
// a failed sidecar never fails the item.
func (o *Organizer) moveSidecars(sourcePath, target string, log *slog.Logger) {
	srcBase := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	dstBase := strings.TrimSuffix(target, filepath.Ext(target))

	for _, ext := range o.cfg.Ingest.SidecarExtensions {
		candidate := srcBase + ext
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		sidecarTarget := shortenForWindows(dstBase + ext)
		if err := fileutil.MoveFile(candidate, sidecarTarget); err != nil {
			log.Warn("sidecar move failed",
				logging.String("sidecar", filepath.Base(candidate)),
				logging.Error(err))
			continue
		}
		log.Debug("moved sidecar", logging.String("sidecar", filepath.Base(sidecarTarget)))
	}
}

// pruneSourceDir removes the source's parent directory once the move left
// it empty, walking up to but never past the incoming root. Best effort.
func (o *Organizer) pruneSourceDir(dir string, log *slog.Logger) {
	root := filepath.Clean(o.cfg.Paths.IncomingDir)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return
		}
		if !fileutil.RemoveDirIfEmpty(dir) {
			return
		}
		log.Debug("removed emptied source directory", logging.String("dir", dir))
		dir = filepath.Dir(dir)
	}
}

// resolveConflict returns target, or the first free numeric-suffix variant
// when it already exists.
func resolveConflict(target string) string {
	if _, err := os.Stat(target); err != nil {
		return target
	}
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for i := 1; ; i++ {
		alt := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(alt); err != nil {
			return alt
		}
	}
}

// ensureFreeSpace verifies the destination filesystem can hold the source
// file plus a safety margin.
func ensureFreeSpace(sourcePath, destDir string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "organizing", "stat source", "stat source file", err)
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(destDir, &stat); err != nil {
		return services.Wrap(services.ErrTransient, "organizing", "statfs", "inspect destination filesystem", err)
	}
	available := stat.Bavail * uint64(stat.Bsize)
	needed := uint64(info.Size()) + freeSpaceMargin
	if available < needed {
		return services.Wrap(services.ErrValidation, "organizing", "free space",
			fmt.Sprintf("destination has %d bytes free, need %d", available, needed), nil)
	}
	return nil
}
