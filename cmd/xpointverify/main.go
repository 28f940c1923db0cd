// Command xpointverify re-derives a generated points file and, optionally,
// checks its binary X file against it.
package main

import (
	"flag"
	"math/big"
	"os"

	"github.com/Amr-9/XPointGen/internal/ui"
	"github.com/Amr-9/XPointGen/pkg/generator/secp256k1"
	"github.com/Amr-9/XPointGen/pkg/generator/sink"
	"github.com/Amr-9/XPointGen/pkg/generator/verify"
	"github.com/Amr-9/XPointGen/pkg/rangeexpr"
)

func main() {
	fs := flag.NewFlagSet("xpointverify", flag.ExitOnError)
	var (
		pubKey   = fs.String("pubkey", "", "target public key (or use -manifest)")
		rangeStr = fs.String("range", "", "range expression (or use -manifest)")
		chunks   = fs.Uint64("chunks", 0, "chunk count (or use -manifest)")
		text     = fs.String("text", "points.txt", "text file to verify")
		bin      = fs.String("bin", "", "binary file to check against the text file")
		manifest = fs.String("manifest", "", "manifest written by xpointgen")
	)
	_ = fs.Parse(os.Args[1:])

	var stride *big.Int
	if *manifest != "" {
		m, err := sink.ReadManifest(*manifest)
		if err != nil {
			ui.Fatalf("Verify", "read manifest: %v", err)
		}
		*pubKey = m.PubKey
		s, ok := new(big.Int).SetString(m.Stride, 10)
		if !ok {
			ui.Fatalf("Verify", "manifest stride %q is not an integer", m.Stride)
		}
		stride = s
	} else {
		if *pubKey == "" || *rangeStr == "" || *chunks == 0 {
			ui.Fatalf("Verify", "need -manifest or all of -pubkey, -range and -chunks")
		}
		total, err := rangeexpr.Eval(*rangeStr)
		if err != nil {
			ui.Fatalf("Verify", "range: %v", err)
		}
		stride = total.Quo(total, new(big.Int).SetUint64(*chunks))
	}

	base, err := secp256k1.DecodePubKey(*pubKey)
	if err != nil {
		ui.Fatalf("Verify", "%v", err)
	}

	tf, err := os.Open(*text)
	if err != nil {
		ui.Fatalf("Verify", "%v", err)
	}
	n, err := verify.Text(tf, base, stride)
	tf.Close()
	if err != nil {
		ui.Fatalf("Verify", "%s: %v", *text, err)
	}
	ui.Logf("Verify", "%s: %s records OK", *text, ui.FormatNumber(n))

	if *bin == "" {
		return
	}
	bf, err := os.Open(*bin)
	if err != nil {
		ui.Fatalf("Verify", "%v", err)
	}
	defer bf.Close()
	tf, err = os.Open(*text)
	if err != nil {
		ui.Fatalf("Verify", "%v", err)
	}
	defer tf.Close()

	n, err = verify.Binary(bf, tf)
	if err != nil {
		ui.Fatalf("Verify", "%s: %v", *bin, err)
	}
	ui.Logf("Verify", "%s: %s entries OK", *bin, ui.FormatNumber(n))
}
