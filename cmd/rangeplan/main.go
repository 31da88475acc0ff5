package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"range-server/domain"
	"range-server/domain/mimetypes"
	"range-server/services"
	"range-server/storage"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// rangeplan shows how the engine would answer a request without sending any body.
func main() {
	dir := flag.String("dir", ".", "Base directory")
	file := flag.String("file", "", "File to plan")
	rangeHeader := flag.String("range", "", `Range header, e.g. "bytes=0-0,-5"`)
	ifRange := flag.String("if-range", "", "If-Range header")
	flag.Parse()

	if err := run(os.Stdout, *dir, *file, *rangeHeader, *ifRange); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, dir, file, rangeHeader, ifRange string) error {
	root, err := storage.ResolveBaseDir(dir)
	if err != nil {
		return err
	}
	svc := services.NewDownloadService(root, mimetypes.NewDetector(),
		services.NewStreamWriter(domain.DefaultChunkSize, 0), domain.DefaultExpiresIn, false)

	download := svc.Prepare(domain.DownloadRequest{Filename: file}, domain.Conditions{Range: rangeHeader, IfRange: ifRange})
	defer download.Close()

	fmt.Fprintf(out, "%s %s\n", statusColor(download.Status).Render(strconv.Itoa(download.Status)), download.Meta.Name)
	if download.Err != nil {
		fmt.Fprintf(out, "reason: %v\n", download.Err)
		return nil
	}
	if download.RangesIgnored {
		fmt.Fprintln(out, "If-Range did not match, ranges ignored")
	}
	if download.Plan == nil {
		return nil
	}

	plan := download.Plan
	fmt.Fprintf(out, "%s, %s, %d bytes on the wire\n", plan.Kind, plan.ContentType, plan.ContentLength)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Part", "First", "Last", "Length", "Framing"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(planRows(*plan))
	table.Render()
	return nil
}

func planRows(plan domain.ResponsePlan) [][]string {
	if plan.Kind != domain.MultipartRanges {
		spec := domain.RangeSpec{First: 0, Last: plan.Size - 1}
		if plan.Kind == domain.SingleRange {
			spec = plan.Ranges[0]
		}
		if plan.Size == 0 {
			return [][]string{{"1", "-", "-", "0", "0"}}
		}
		return [][]string{row(1, spec, 0)}
	}
	return lo.Map(plan.Parts, func(part domain.Part, i int) []string {
		return row(i+1, part.Range, len(part.Header))
	})
}

func row(index int, spec domain.RangeSpec, framing int) []string {
	return []string{
		strconv.Itoa(index),
		strconv.FormatUint(spec.First, 10),
		strconv.FormatUint(spec.Last, 10),
		strconv.FormatUint(spec.Length(), 10),
		strconv.Itoa(framing),
	}
}

func statusColor(status int) color.Style {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen, color.OpBold)
	case status == 304:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.OpBold)
	}
}
