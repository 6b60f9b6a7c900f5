package remedy

import (
	"strings"
	"testing"
)

func TestParseResponse_MarkedFile(t *testing.T) {
	out := "Here you go:\n<START_FILE>\nx = 1\nprint(x)\n<END_FILE>\nSUGGESTIONS:\n- add tests"
	oc := ParseResponse(out)
	if oc.Kind != KindCorrected {
		t.Fatalf("kind = %v, want KindCorrected", oc.Kind)
	}
	if oc.Corrected != "x = 1\nprint(x)" {
		t.Errorf("corrected = %q", oc.Corrected)
	}
	if !strings.Contains(oc.Notes, "SUGGESTIONS") {
		t.Errorf("notes = %q, want trailer kept", oc.Notes)
	}
}

func TestParseResponse_NoChangeSentinel(t *testing.T) {
	for _, out := range []string{"NO_CHANGE", "  NO_CHANGE\n"} {
		oc := ParseResponse(out)
		if oc.Kind != KindNoChange {
			t.Errorf("ParseResponse(%q).Kind = %v, want KindNoChange", out, oc.Kind)
		}
	}
}

func TestParseResponse_SentinelMustBeExact(t *testing.T) {
	oc := ParseResponse("NO_CHANGE needed here")
	if oc.Kind == KindNoChange {
		t.Error("sentinel with surrounding prose must not count as no-change")
	}
}

func TestParseResponse_SingleFenceRecovered(t *testing.T) {
	out := "Sure:\n```python\nx = 1\n```\ntrailing remark"
	oc := ParseResponse(out)
	if oc.Kind != KindGuessed {
		t.Fatalf("kind = %v, want KindGuessed", oc.Kind)
	}
	if oc.Corrected != "x = 1" {
		t.Errorf("corrected = %q, language tag should be stripped", oc.Corrected)
	}
	if oc.Notes != "trailing remark" {
		t.Errorf("notes = %q", oc.Notes)
	}
}

func TestParseResponse_FenceWithoutLanguageTag(t *testing.T) {
	oc := ParseResponse("```\nx = 1\ny = 2\n```")
	if oc.Kind != KindGuessed {
		t.Fatalf("kind = %v, want KindGuessed", oc.Kind)
	}
	if oc.Corrected != "x = 1\ny = 2" {
		t.Errorf("corrected = %q", oc.Corrected)
	}
}

func TestParseResponse_MultipleFencesFail(t *testing.T) {
	out := "```python\na\n```\nand also\n```python\nb\n```"
	if oc := ParseResponse(out); oc.Kind != KindFailed {
		t.Errorf("kind = %v, want KindFailed for multiple fences", oc.Kind)
	}
}

func TestParseResponse_UnstructuredOutputFails(t *testing.T) {
	oc := ParseResponse("I think the file looks mostly fine, maybe rename x.")
	if oc.Kind != KindFailed {
		t.Errorf("kind = %v, want KindFailed", oc.Kind)
	}
	if oc.Corrected != "" {
		t.Errorf("no correction may be fabricated, got %q", oc.Corrected)
	}
}

func TestParseResponse_MarkersTakePriorityOverFence(t *testing.T) {
	out := "<START_FILE>\nmarked = True\n<END_FILE>\n```python\nfenced = True\n```"
	oc := ParseResponse(out)
	if oc.Kind != KindCorrected || oc.Corrected != "marked = True" {
		t.Errorf("outcome = %+v, want marker extraction to win", oc)
	}
}

func TestParseResponse_EmptyMarkerBodyFails(t *testing.T) {
	oc := ParseResponse("<START_FILE>\n\n<END_FILE>")
	if oc.Kind == KindCorrected {
		t.Error("empty marker body must not produce a correction")
	}
}

func TestParseResponse_UnterminatedMarkersFail(t *testing.T) {
	oc := ParseResponse("<START_FILE>\nx = 1\n")
	if oc.Kind == KindCorrected {
		t.Error("missing end marker must not produce a correction")
	}
}
