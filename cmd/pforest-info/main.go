// Command pforest-info prints a pforest container's user string and
// section table without knowledge of what any section's bytes mean,
// mirroring p4est_file_info's command-line counterpart.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/distr1/pforest/internal/comm"
	"github.com/distr1/pforest/internal/forestio"
	"github.com/google/renameio"
)

var (
	unixIO  = flag.Bool("unix_io", false, "use the golang.org/x/sys/unix backend instead of os.File")
	sidecar = flag.String("sidecar", "", "if set, atomically write the section table as JSON to this path")
)

type sidecarInfo struct {
	UserString string                 `json:"user_string"`
	Sections   []forestio.SectionInfo `json:"sections"`
}

func run(path string, backend comm.Backend) error {
	comms := comm.NewGroup(1)
	userString, sections, err := forestio.Info(comms[0], backend, path)
	if err != nil {
		return err
	}
	fmt.Printf("user string: %q\n", userString)
	fmt.Printf("%-6s %12s  %s\n", "block", "bytes", "user string")
	for _, s := range sections {
		fmt.Printf("%-6c %12d  %q\n", byte(s.BlockType), s.DataSize, s.UserString)
	}
	if *sidecar == "" {
		return nil
	}
	b, err := json.MarshalIndent(sidecarInfo{UserString: userString, Sections: sections}, "", "  ")
	if err != nil {
		return err
	}
	// Atomic write-then-rename: a reader racing this command never sees a
	// partially written sidecar file.
	return renameio.WriteFile(*sidecar, b, 0644)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pforest-info [-unix_io] <file>")
		os.Exit(2)
	}
	var backend comm.Backend = comm.OSBackend{}
	if *unixIO {
		backend = comm.UnixBackend{}
	}
	if err := run(flag.Arg(0), backend); err != nil {
		log.Fatal(err)
	}
}
