package parser

import (
	"strings"
	"testing"
)

func TestCSVParser_LabelsRows(t *testing.T) {
	input := "quarter,revenue\nQ1,100\nQ2,150\n"
	p := &CSVParser{}
	src, err := p.Parse(strings.NewReader(input), "sales.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Headers: quarter, revenue\nquarter: Q1, revenue: 100\nquarter: Q2, revenue: 150"
	if src.Text != want {
		t.Errorf("expected %q, got %q", want, src.Text)
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	// Rows longer than the header keep their extra cells unlabeled.
	input := "a,b\n1,2,3\n"
	p := &CSVParser{}
	src, err := p.Parse(strings.NewReader(input), "ragged.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Text != "Headers: a, b\na: 1, b: 2, 3" {
		t.Errorf("got %q", src.Text)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	src, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Text != "" {
		t.Errorf("expected empty text, got %q", src.Text)
	}
}
