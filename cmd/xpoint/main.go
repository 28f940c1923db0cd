// Command xpoint packs a list of public keys into 32-byte X coordinates.
//
//	xpoint pubkeys_in.txt xpoints_out.bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Amr-9/XPointGen/internal/ui"
	"github.com/Amr-9/XPointGen/pkg/generator/xpoint"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage:\n\t%s pubkeys_in.txt xpoints_out.bin\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	res, err := xpoint.ConvertFile(os.Args[1], os.Args[2], func(key string, reason error) {
		ui.Noticef("XPoint", "skipped %q: %v", key, reason)
	})
	if err != nil {
		ui.Fatalf("XPoint", "%v", err)
	}

	fmt.Printf("processed : %s pubkeys\n", ui.FormatNumber(res.Processed))
	fmt.Printf("skipped   : %s pubkeys\n", ui.FormatNumber(res.Skipped))
}
