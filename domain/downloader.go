package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RangeSpec is a validated closed interval, first <= last <= size-1.
type RangeSpec struct {
	First uint64
	Last  uint64
}

func (r RangeSpec) Length() uint64 {
	return r.Last - r.First + 1
}

// ContentRange renders the Content-Range value for this span of a file of the given size.
func (r RangeSpec) ContentRange(size uint64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.First, r.Last, size)
}

// RangeSet keeps header order, overlapping spans are neither merged nor sorted.
type RangeSet []RangeSpec

func (s RangeSet) Multiple() bool {
	return len(s) > 1
}

type PlanKind int

const (
	FullBody PlanKind = iota
	SingleRange
	MultipartRanges
)

func (k PlanKind) String() string {
	switch k {
	case FullBody:
		return "full"
	case SingleRange:
		return "single"
	case MultipartRanges:
		return "multipart"
	default:
		return "unknown"
	}
}

// Part is one framed section of a multipart body.
type Part struct {
	Range  RangeSpec
	Header string
}

// ResponsePlan describes the body to stream and how it is framed.
type ResponsePlan struct {
	Kind          PlanKind
	Status        int
	Size          uint64
	ContentType   string
	ContentLength uint64
	Ranges        RangeSet
	Boundary      string
	Parts         []Part
}

// Closing is the trailing delimiter of a multipart body.
func (p ResponsePlan) Closing() string {
	return "\r\n--" + p.Boundary + "--\r\n"
}

// NewRandomBoundary returns a per-request boundary token.
func NewRandomBoundary() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
