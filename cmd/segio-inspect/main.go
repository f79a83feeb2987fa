package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/miretskiy/segio"
	"github.com/miretskiy/segio/digest"
	"github.com/miretskiy/segio/manifest"
	"github.com/miretskiy/segio/segfile"
)

func main() {
	// Define flags
	path := flag.String("path", "", "Path to a segment file or catalog directory (required)")
	catalog := flag.Bool("catalog", false, "Inspect a catalog directory instead of a segment file")
	prune := flag.Bool("prune", false, "With --catalog: drop entries whose files are missing or truncated")
	verify := flag.Bool("verify", false, "With --catalog: re-digest each segment file and compare with the recorded sum")
	fingerprint := flag.Bool("fingerprint", true, "Expect a leading fingerprint header in the segment file")
	size := flag.Int("size", 0, "Record size in bytes; when set, record math is verified and the first record dumped")
	width := flag.Int("width", 4, "Count prefix width in bytes (4 or 8)")
	flag.Parse()

	// Validate required flags
	if *path == "" {
		fmt.Fprintln(os.Stderr, "Error: --path is required")
		flag.Usage()
		os.Exit(1)
	}

	var err error
	if *catalog {
		err = inspectCatalog(*path, *prune, *verify)
	} else {
		err = inspectFile(*path, *fingerprint, *size, segio.PrefixWidth(*width))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// inspectFile prints the structure of one segment file: the fingerprint,
// the declared record count, and whether the byte math adds up.
func inspectFile(path string, fingerprinted bool, size int, width segio.PrefixWidth) error {
	f, err := segfile.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	fmt.Printf("File:    %s (%d bytes)\n", path, fi.Size())

	headerBytes := int64(0)
	if fingerprinted {
		stamp, err := segio.ReadHeader(f, segio.FingerprintSize, segio.DecodeFingerprint)
		if err != nil {
			return fmt.Errorf("fingerprint: %w", err)
		}
		headerBytes = segio.FingerprintSize
		fmt.Printf("Format:  v%d.%d  layouts %#016x\n", stamp.Major, stamp.Minor, stamp.LayoutSum)
	}

	count, err := segio.ReadCount(f, width)
	if err != nil {
		return err
	}
	fmt.Printf("Records: %d (count prefix %d bytes)\n", count, width)

	payload := fi.Size() - headerBytes - int64(width)
	if size <= 0 {
		fmt.Printf("Payload: %d bytes\n", payload)
		return nil
	}

	// Trailing bytes past the last record are legal; too few bytes are not.
	want := int64(count) * int64(size)
	switch {
	case payload < want:
		fmt.Printf("Payload: %d bytes, TRUNCATED: %d records x %d bytes = %d\n",
			payload, count, size, want)
	case payload > want:
		fmt.Printf("Payload: %d bytes, %d records x %d bytes, OK (%d trailing bytes)\n",
			payload, count, size, payload-want)
	default:
		fmt.Printf("Payload: %d bytes, %d records x %d bytes, OK\n", payload, count, size)
	}

	if count > 0 {
		first := make([]byte, size)
		if _, err := io.ReadFull(f, first); err != nil {
			return fmt.Errorf("failed to read first record: %w", err)
		}
		fmt.Printf("First:   % x\n", first)
	}
	return nil
}

// inspectCatalog lists every cataloged segment, optionally re-digesting
// each file and pruning entries whose files no longer match.
func inspectCatalog(path string, prune, verify bool) error {
	c, err := manifest.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close catalog: %v\n", err)
		}
	}()

	fmt.Printf("Catalog: %s (%d segments)\n", path, c.Len())
	bad := 0
	err = c.ForEach(func(e manifest.Entry) error {
		status := ""
		if verify {
			status = "  " + verifyEntry(path, e)
			if status != "  OK" {
				bad++
			}
		}
		fmt.Printf("  %6d  %-32s  off %8d  %10d records  %12d bytes  sum %016x  %s%s\n",
			e.ID, e.Path, e.Offset, e.Count, e.Bytes, e.Sum,
			time.Unix(0, e.CTime).UTC().Format(time.RFC3339), status)
		return nil
	})
	if err != nil {
		return err
	}

	if prune {
		removed, err := c.Prune()
		if err != nil {
			return err
		}
		fmt.Printf("Pruned:  %d stale entries\n", removed)
	}
	if bad > 0 {
		return fmt.Errorf("%d segments failed verification", bad)
	}
	return nil
}

// verifyEntry re-digests the record region of an entry's file and
// compares it with the cataloged sum.
func verifyEntry(root string, e manifest.Entry) string {
	name := e.Path
	if !filepath.IsAbs(name) {
		name = filepath.Join(root, name)
	}
	f, err := segfile.Open(name)
	if err != nil {
		return fmt.Sprintf("UNREADABLE (%v)", err)
	}
	defer f.Close()
	if _, err := f.Seek(e.Offset, io.SeekStart); err != nil {
		return fmt.Sprintf("UNREADABLE (%v)", err)
	}
	sum, err := digest.SumReader(io.LimitReader(f, e.Bytes))
	if err != nil {
		return fmt.Sprintf("UNREADABLE (%v)", err)
	}
	if sum != e.Sum {
		return fmt.Sprintf("BAD SUM %016x", sum)
	}
	return "OK"
}
