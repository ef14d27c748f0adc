package aggregate

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"time"

	"github.com/netascode/nac-test-go/internal/errs"
	"github.com/netascode/nac-test-go/internal/model"
)

const archiveSubsystem = "aggregate.archive"

// ArchiveAggregator combines N per-device archives into one lane archive,
// each device's contents nested under a top-level directory named for its
// hostname. Used only for the D2D lane.
type ArchiveAggregator struct{}

// NewArchiveAggregator returns an ArchiveAggregator.
func NewArchiveAggregator() *ArchiveAggregator {
	return &ArchiveAggregator{}
}

// Aggregate reads every archive in devices and writes a combined zip at
// outputPath. A device archive that cannot be read aborts the whole
// aggregation with an AggregationError.
func (a *ArchiveAggregator) Aggregate(devices []model.Archive, outputPath string) (model.Archive, error) {
	f, err := os.Create(outputPath)
	if err != nil {
		return model.Archive{}, errs.Wrap(errs.AggregationError, "create combined archive", archiveSubsystem, outputPath, err)
	}
	defer f.Close()

	writer := zip.NewWriter(f)

	var contents []string
	for _, device := range devices {
		names, err := copyArchiveInto(writer, device.Path, device.Hostname)
		if err != nil {
			return model.Archive{}, errs.Wrap(errs.AggregationError, "merge device archive", archiveSubsystem, device.Path, err)
		}
		contents = append(contents, names...)
	}

	if err := writer.Close(); err != nil {
		return model.Archive{}, errs.Wrap(errs.AggregationError, "finalize combined archive", archiveSubsystem, outputPath, err)
	}

	return model.Archive{
		Path:      outputPath,
		Lane:      model.TestTypeD2D,
		CreatedAt: time.Now(),
		Contents:  contents,
	}, nil
}

func copyArchiveInto(out *zip.Writer, archivePath, hostname string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		destName := path.Join(hostname, f.Name)
		names = append(names, destName)

		header := f.FileHeader
		header.Name = destName

		w, err := out.CreateHeader(&header)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		_, copyErr := io.Copy(w, rc)
		rc.Close()
		if copyErr != nil {
			return nil, copyErr
		}
	}
	return names, nil
}
