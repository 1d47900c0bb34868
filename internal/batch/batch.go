// Package batch implements the three bulk file operations a vault
// performs once unlocked: encrypt, decrypt, and secure-delete. All three
// share one skeleton: snapshot the DEK if needed, reset cancellation,
// iterate the file list emitting progress/error events on channels, and
// stop cleanly on the first per-file error or cancellation request.
package batch

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/heizence/securevault/internal/crypto"
	"github.com/heizence/securevault/internal/fsutil"
	"github.com/heizence/securevault/internal/opcontrol"
	"github.com/heizence/securevault/internal/vaulterr"
)

// ProgressEvent reports one step of a batch operation's progress.
type ProgressEvent struct {
	Status            string // "processing" or "done"
	CurrentFilePath   string
	CurrentFileNumber int
	TotalFiles        int
	TotalProgress     float64
}

// ErrorEvent reports a single file's failure. Emitting one always ends
// the batch: iteration stops without a terminal "done" ProgressEvent.
type ErrorEvent struct {
	FilePath string
	Message  string
}

const chunkSize = 1 << 20 // 1 MiB

// EncryptFiles seals each file in paths under dek, writing
// <destDir>/<basename(path)>.enc. The source file is left untouched.
func EncryptFiles(fs fsutil.FileSystem, paths []string, destDir string, dek []byte, flag *opcontrol.Flag) (<-chan ProgressEvent, <-chan ErrorEvent) {
	progress, errs := newChannels()
	go runBatch(fs, paths, flag, progress, errs, func(path string) error {
		return encryptOne(fs, path, destDir, dek)
	})
	return progress, errs
}

// DecryptFiles opens each file in paths under dek, writing
// <destDir>/<basename(path) minus ".enc">.
func DecryptFiles(fs fsutil.FileSystem, paths []string, destDir string, dek []byte, flag *opcontrol.Flag) (<-chan ProgressEvent, <-chan ErrorEvent) {
	progress, errs := newChannels()
	go runBatch(fs, paths, flag, progress, errs, func(path string) error {
		return decryptOne(fs, path, destDir, dek)
	})
	return progress, errs
}

// SecureDeleteFiles overwrites each file in paths with CSPRNG bytes in
// 1 MiB chunks, then deletes it. It needs no DEK: destruction doesn't
// depend on the vault being unlocked.
func SecureDeleteFiles(fs fsutil.FileSystem, paths []string, flag *opcontrol.Flag) (<-chan ProgressEvent, <-chan ErrorEvent) {
	progress, errs := newChannels()
	go runBatch(fs, paths, flag, progress, errs, func(path string) error {
		return secureDeleteOne(fs, path, flag)
	})
	return progress, errs
}

func newChannels() (chan ProgressEvent, chan ErrorEvent) {
	return make(chan ProgressEvent, 1), make(chan ErrorEvent, 1)
}

// runBatch is the shared skeleton every batch operation follows:
// reset cancellation, iterate the list, stop on the first
// per-file error or cancellation, emit a terminal "done" only if neither
// occurred.
func runBatch(fs fsutil.FileSystem, paths []string, flag *opcontrol.Flag, progress chan<- ProgressEvent, errs chan<- ErrorEvent, op func(path string) error) {
	defer close(progress)
	defer close(errs)

	flag.Reset()
	total := len(paths)

	for i, path := range paths {
		if flag.IsCancelled() {
			return
		}

		if err := op(path); err != nil {
			errs <- ErrorEvent{FilePath: path, Message: err.Error()}
			return
		}

		progress <- ProgressEvent{
			Status:            "processing",
			CurrentFilePath:   path,
			CurrentFileNumber: i + 1,
			TotalFiles:        total,
			TotalProgress:     float64(i+1) / float64(total),
		}
	}

	progress <- ProgressEvent{
		Status:            "done",
		CurrentFilePath:   "Done",
		CurrentFileNumber: total,
		TotalFiles:        total,
		TotalProgress:     1.0,
	}
}

func encryptOne(fs fsutil.FileSystem, source, destDir string, dek []byte) error {
	plaintext, err := fs.ReadFile(source)
	if err != nil {
		return vaulterr.New(vaulterr.Io, "encrypt_file", err)
	}

	nonce, err := crypto.GenerateNonce()
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "encrypt_file", err)
	}

	ciphertext, err := crypto.Seal(dek, nonce, plaintext)
	if err != nil {
		return vaulterr.New(vaulterr.Crypto, "encrypt_file", err)
	}

	dest := filepath.Join(destDir, filepath.Base(source)+".enc")
	out := append(append([]byte(nil), nonce...), ciphertext...)
	if err := fs.WriteFile(dest, out, 0600); err != nil {
		return vaulterr.New(vaulterr.Io, "encrypt_file", err)
	}
	return nil
}

func decryptOne(fs fsutil.FileSystem, source, destDir string, dek []byte) error {
	data, err := fs.ReadFile(source)
	if err != nil {
		return vaulterr.New(vaulterr.Io, "decrypt_file", err)
	}
	if len(data) < crypto.NonceLength {
		return vaulterr.New(vaulterr.InvalidFormat, "decrypt_file", nil)
	}

	base := filepath.Base(source)
	if !strings.HasSuffix(base, ".enc") {
		return vaulterr.New(vaulterr.InvalidFormat, "decrypt_file", fmt.Errorf("%q is missing the .enc suffix", base))
	}

	nonce, ciphertext := data[:crypto.NonceLength], data[crypto.NonceLength:]
	plaintext, err := crypto.Open(dek, nonce, ciphertext)
	if err != nil {
		return vaulterr.New(vaulterr.CorruptOrTampered, "decrypt_file", err)
	}

	dest := filepath.Join(destDir, strings.TrimSuffix(base, ".enc"))
	if err := fs.WriteFile(dest, plaintext, 0600); err != nil {
		return vaulterr.New(vaulterr.Io, "decrypt_file", err)
	}
	return nil
}

func secureDeleteOne(fs fsutil.FileSystem, path string, flag *opcontrol.Flag) error {
	info, err := fs.Stat(path)
	if err != nil {
		return vaulterr.New(vaulterr.Io, "secure_delete_file", err)
	}
	if !info.Mode().IsRegular() {
		return nil // not a regular file: treated as a no-op success
	}

	f, err := fs.OpenForWrite(path)
	if err != nil {
		return vaulterr.New(vaulterr.Io, "secure_delete_file", err)
	}

	size := info.Size()
	var written int64
	buf := make([]byte, chunkSize)
	for written < size {
		if flag.IsCancelled() {
			_ = f.Close()
			return vaulterr.New(vaulterr.Cancelled, "secure_delete_file", nil)
		}

		n := chunkSize
		if remaining := size - written; remaining < int64(chunkSize) {
			n = int(remaining)
		}
		if _, err := rand.Read(buf[:n]); err != nil {
			_ = f.Close()
			return vaulterr.New(vaulterr.Crypto, "secure_delete_file", err)
		}
		if _, err := f.Write(buf[:n]); err != nil {
			_ = f.Close()
			return vaulterr.New(vaulterr.Io, "secure_delete_file", err)
		}
		written += int64(n)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return vaulterr.New(vaulterr.Io, "secure_delete_file", err)
	}
	if err := f.Close(); err != nil {
		return vaulterr.New(vaulterr.Io, "secure_delete_file", err)
	}

	if err := fs.Remove(path); err != nil {
		return vaulterr.New(vaulterr.Io, "secure_delete_file", err)
	}
	return nil
}
