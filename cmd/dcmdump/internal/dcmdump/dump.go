// Package dcmdump implements the dump command: for each input path it
// opens the file, reads File Meta Information and the main Data Set, and
// prints both as tables. It never decodes pixel bytes unless a frame
// number is requested, and even then it only reports the frame's length
// and pixel geometry; decompression is out of scope.
package dcmdump

import (
	"fmt"
	"io"
	"os"

	"github.com/alexeyco/simpletable"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/hackermd/dcmslide/cmd/dcmdump/internal/ui"
	"github.com/hackermd/dcmslide/dataset"
	"github.com/hackermd/dcmslide/dcmfile"
	"github.com/hackermd/dcmslide/pixel"
	"github.com/hackermd/dcmslide/uid"
)

// Run dumps every path in turn, continuing past a failing file so that one
// malformed input in a batch doesn't hide the rest. It returns an error
// (mapped to exit code 1 by the caller) if any file failed.
func Run(paths []string, frame int, logger *log.Logger) error {
	ui.PrintBanner()

	failed := 0
	for _, path := range paths {
		if err := dumpFile(path, frame, logger); err != nil {
			logger.Error("failed to dump file", "path", path, "error", err)
			failed++
			continue
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to dump", failed, len(paths))
	}
	return nil
}

func dumpFile(path string, frame int, logger *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := dcmfile.Open(f)
	h.SetLogger(logger)

	meta, err := h.ReadFileMeta()
	if err != nil {
		return fmt.Errorf("read file meta: %w", err)
	}
	metadata, err := h.ReadMetadata()
	if err != nil {
		return fmt.Errorf("read data set: %w", err)
	}

	fmt.Printf("\n%s\n", ui.BannerStyle.Render(path))
	fmt.Println("-- File Meta Information --")
	printTable(os.Stdout, meta)
	fmt.Println("-- Data Set --")
	printTable(os.Stdout, metadata)

	if frame > 0 {
		if err := dumpFrame(h, metadata, frame); err != nil {
			return fmt.Errorf("read frame %d: %w", frame, err)
		}
	}

	return nil
}

func dumpFrame(h *dcmfile.Handle, metadata *dataset.DataSet, frameNumber int) error {
	transferSyntaxUID := h.TransferSyntaxUID()

	// Native transfer syntaxes never carry an inline or extended offset
	// table; only encapsulated files are worth probing with ReadBOT.
	var bot *pixel.BOT
	var err error
	if uid.IsEncapsulated(transferSyntaxUID) {
		var ok bool
		bot, ok, err = pixel.ReadBOT(h, metadata)
		if err != nil {
			return err
		}
		if !ok {
			bot, err = pixel.BuildBOT(h, metadata, transferSyntaxUID)
			if err != nil {
				return err
			}
		}
	} else {
		bot, err = pixel.BuildBOT(h, metadata, transferSyntaxUID)
		if err != nil {
			return err
		}
	}

	fr, err := pixel.ReadFrame(h, metadata, bot, transferSyntaxUID, frameNumber)
	if err != nil {
		return err
	}

	fmt.Printf("-- Frame %d/%d --\n", fr.Number, bot.NumFrames)
	fmt.Printf("  %s x %s, %d samples/pixel, %d bits allocated, %s\n",
		humanize.Comma(int64(fr.Rows)), humanize.Comma(int64(fr.Columns)),
		fr.SamplesPerPixel, fr.BitsAllocated, fr.PhotometricInterpretation)
	fmt.Printf("  %s encoded\n", humanize.Bytes(uint64(fr.Length)))
	return nil
}

func printTable(w io.Writer, ds *dataset.DataSet) {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Tag"},
			{Align: simpletable.AlignCenter, Text: "VR"},
			{Align: simpletable.AlignCenter, Text: "Name"},
			{Text: "Value"},
		},
	}
	for _, elem := range ds.Elements() {
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Text: elem.Tag().String()},
			{Text: elem.VR().String()},
			{Text: elem.Name()},
			{Text: elem.Value().String()},
		})
	}
	table.SetStyle(simpletable.StyleCompact)
	fmt.Fprintln(w, table.String())
}
