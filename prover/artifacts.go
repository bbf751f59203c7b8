package prover

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vocdoni/anonvote/log"
	"github.com/vocdoni/anonvote/types"
)

// CheckHashes determines whether artifact content hashes are verified on
// load and download. It can be disabled by setting the
// ANONVOTE_CHECK_HASHES environment variable to false or 0.
var CheckHashes = true

// BaseDir is the local artifact cache. It defaults to the
// ANONVOTE_ARTIFACTS_DIR environment variable or a directory under the user
// cache.
var BaseDir string

func init() {
	if checkHashes := os.Getenv("ANONVOTE_CHECK_HASHES"); checkHashes != "" {
		if strings.ToLower(checkHashes) == "false" || checkHashes == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv("ANONVOTE_ARTIFACTS_DIR"); dir != "" {
		BaseDir = dir
	} else {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			log.Warnf("unable to access user home directory, using temporary directory: %v", err)
			BaseDir = filepath.Join(os.TempDir(), "anonvote-artifacts")
		} else {
			BaseDir = filepath.Join(home, ".cache", "anonvote-artifacts")
		}
	}
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		log.Errorf("failed to create artifact cache %s: %v", BaseDir, err)
	}
}

// Artifact is one circuit file pinned by the sha256 hash of its content,
// loadable from the local cache or downloadable from its remote URL.
type Artifact struct {
	RemoteURL string
	Hash      types.HexBytes
	Content   []byte
}

// Load fills Content from the local cache. It is a no-op when the content
// is already present; otherwise the hash must be set so the cached file can
// be located and checked.
func (a *Artifact) Load() error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact hash not provided")
	}
	path := filepath.Join(BaseDir, hex.EncodeToString(a.Hash))
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("artifact %x not found in cache", a.Hash)
	}
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", path, err)
	}
	if CheckHashes {
		sum := sha256.Sum256(content)
		if !bytes.Equal(sum[:], a.Hash) {
			return fmt.Errorf("hash mismatch for %s: expected %x, got %x", path, a.Hash, sum)
		}
	}
	a.Content = content
	return nil
}

// Download fetches the artifact from its remote URL into the local cache,
// verifying the pinned hash before the file becomes visible.
func (a *Artifact) Download(ctx context.Context) error {
	if len(a.Content) != 0 {
		return nil
	}
	if a.RemoteURL == "" {
		return fmt.Errorf("artifact not cached and no remote url provided")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.RemoteURL, nil)
	if err != nil {
		return fmt.Errorf("build artifact request: %w", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", a.RemoteURL, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warnf("close artifact response body: %v", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: http status %d", a.RemoteURL, res.StatusCode)
	}

	path := filepath.Join(BaseDir, hex.EncodeToString(a.Hash))
	partial := path + ".partial"
	fd, err := os.OpenFile(partial, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open artifact file: %w", err)
	}
	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(fd, hasher), res.Body); err != nil {
		_ = fd.Close()
		return fmt.Errorf("write artifact file: %w", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("close artifact file: %w", err)
	}
	if CheckHashes && !bytes.Equal(hasher.Sum(nil), a.Hash) {
		_ = os.Remove(partial)
		return fmt.Errorf("hash mismatch for %s: expected %x, got %x",
			a.RemoteURL, a.Hash, hasher.Sum(nil))
	}
	if err := os.Rename(partial, path); err != nil {
		return fmt.Errorf("rename artifact file: %w", err)
	}
	log.Debugw("artifact downloaded", "url", a.RemoteURL, "hash", hex.EncodeToString(a.Hash))
	return a.Load()
}

// CircuitArtifacts groups the three files of the membership circuit: the
// wasm witness calculator, the proving key and the verification key.
type CircuitArtifacts struct {
	witnessCalc  *Artifact
	provingKey   *Artifact
	verifyingKey *Artifact
}

// NewCircuitArtifacts creates the artifact set of the membership circuit.
func NewCircuitArtifacts(witnessCalc, provingKey, verifyingKey *Artifact) *CircuitArtifacts {
	return &CircuitArtifacts{
		witnessCalc:  witnessCalc,
		provingKey:   provingKey,
		verifyingKey: verifyingKey,
	}
}

// LoadAll loads all three artifacts from the local cache.
func (ca *CircuitArtifacts) LoadAll() error {
	for name, a := range map[string]*Artifact{
		"witness calculator": ca.witnessCalc,
		"proving key":        ca.provingKey,
		"verifying key":      ca.verifyingKey,
	} {
		if a == nil {
			continue
		}
		if err := a.Load(); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// DownloadAll fetches any missing artifact into the local cache.
func (ca *CircuitArtifacts) DownloadAll(ctx context.Context) error {
	for name, a := range map[string]*Artifact{
		"witness calculator": ca.witnessCalc,
		"proving key":        ca.provingKey,
		"verifying key":      ca.verifyingKey,
	} {
		if a == nil {
			continue
		}
		if err := a.Download(ctx); err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
	}
	return nil
}

// Prover builds a Prover over the loaded artifacts.
func (ca *CircuitArtifacts) Prover(timeout time.Duration) (*Prover, error) {
	if ca.witnessCalc == nil || len(ca.witnessCalc.Content) == 0 ||
		ca.provingKey == nil || len(ca.provingKey.Content) == 0 {
		return nil, ErrProverUnavailable
	}
	var vkey []byte
	if ca.verifyingKey != nil {
		vkey = ca.verifyingKey.Content
	}
	return New(ca.witnessCalc.Content, ca.provingKey.Content, vkey, timeout), nil
}
