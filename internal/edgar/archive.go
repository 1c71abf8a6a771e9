package edgar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/epeers/bankmetrics/internal/models"
	"github.com/hashicorp/go-getter"
	log "github.com/sirupsen/logrus"
)

// BulkArchiveURL is the nightly zip of every registrant's company facts document
const BulkArchiveURL = "https://www.sec.gov/Archives/edgar/daily-index/xbrl/companyfacts.zip"

// Archive reads company facts from a locally extracted bulk archive.
// Files are named CIK##########.json.
type Archive struct {
	dir string
}

// NewArchive creates an Archive rooted at dir
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Dir returns the extraction directory
func (a *Archive) Dir() string {
	return a.dir
}

// Path returns the file the archive would read for a CIK
func (a *Archive) Path(cik string) (string, error) {
	padded, err := PadCIK(cik)
	if err != nil {
		return "", err
	}
	return filepath.Join(a.dir, "CIK"+padded+".json"), nil
}

// Load reads and parses the facts document for a CIK. A missing file is ErrNotFound.
func (a *Archive) Load(ctx context.Context, cik string) (*models.CompanyFacts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := a.Path(cik)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	facts, err := ParseCompanyFacts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return facts, nil
}

// Populated reports whether the archive directory already holds extracted documents
func (a *Archive) Populated() bool {
	matches, err := filepath.Glob(filepath.Join(a.dir, "CIK*.json"))
	return err == nil && len(matches) > 0
}

// Download fetches src (normally BulkArchiveURL) and unpacks it into the archive directory.
// go-getter picks the zip decompressor from the URL extension.
func (a *Archive) Download(ctx context.Context, src, userAgent string) error {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}

	header := http.Header{}
	header.Set("User-Agent", userAgent)
	httpGetter := &getter.HttpGetter{Header: header}

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  a.dir,
		Mode: getter.ClientModeDir,
		Getters: map[string]getter.Getter{
			"http":  httpGetter,
			"https": httpGetter,
			"file":  new(getter.FileGetter),
		},
	}

	log.Infof("Downloading bulk archive %s into %s", src, a.dir)
	if err := client.Get(); err != nil {
		return fmt.Errorf("failed to fetch bulk archive: %w", err)
	}
	log.Infof("Bulk archive extracted into %s", a.dir)
	return nil
}
