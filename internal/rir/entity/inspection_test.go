package entity

import "testing"

func line(result string) InspectionLine {
	return InspectionLine{ResultadoFinal: result}
}

// TestOverallVerdict tests folding line verdicts into the report label
func TestOverallVerdict(t *testing.T) {
	tests := []struct {
		name  string
		lines []InspectionLine
		want  string
	}{
		{"no lines", nil, OverallAprovado},
		{"all approved", []InspectionLine{line(LineResultAprovado), line(LineResultAprovado)}, OverallAprovado},
		{"approved plus unjudged", []InspectionLine{line(LineResultAprovado), line("")}, OverallAprovado},
		{"only unjudged", []InspectionLine{line(""), line("")}, OverallAprovado},
		{"all reproved", []InspectionLine{line(LineResultReprovado), line(LineResultReprovado)}, OverallReprovado},
		{"reproved plus unjudged", []InspectionLine{line(LineResultReprovado), line("")}, OverallReprovado},
		{"mixed", []InspectionLine{line(LineResultAprovado), line(LineResultReprovado)}, OverallParcial},
		{"mixed with unjudged", []InspectionLine{line(LineResultAprovado), line(LineResultReprovado), line("")}, OverallParcial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallVerdict(tt.lines); got != tt.want {
				t.Errorf("OverallVerdict() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNormalizeDate tests dd/mm/yyyy normalization and lenient fallback
func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15/03/2026", "2026-03-15"},
		{"01/12/2025", "2025-12-01"},
		{"2026-03-15", "2026-03-15"},
		{"  15/03/2026  ", "2026-03-15"},
		{"", ""},
		{"31/02/2026", ""}, // impossible date
		{"2026/03/15", ""}, // wrong separator order
		{"15-03-2026", ""}, // unsupported format
		{"not a date", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSamplingPlanRangeContains tests inclusive band boundaries
func TestSamplingPlanRangeContains(t *testing.T) {
	r := SamplingPlanRange{FaixaInicial: 51, FaixaFinal: 90}

	for _, n := range []int{51, 75, 90} {
		if !r.Contains(n) {
			t.Errorf("Contains(%d) = false, want true", n)
		}
	}
	for _, n := range []int{50, 91, 0} {
		if r.Contains(n) {
			t.Errorf("Contains(%d) = true, want false", n)
		}
	}
}
