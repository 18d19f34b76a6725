package identifier

import "testing"

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.1126/science.abm5224", "10.1126/science.abm5224"},
		{"https://doi.org/10.1126/science.abm5224", "10.1126/science.abm5224"},
		{"http://dx.doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"DOI:10.1038/nature12373", "10.1038/nature12373"},
		{"doi:10.1038/nature12373", "10.1038/nature12373"},
		{"  10.1371/journal.pone.0302376  ", "10.1371/journal.pone.0302376"},
		{"10.1371/journal.pone.0302376.", "10.1371/journal.pone.0302376"},
		{"10.1016/J.CELL.2023.05.017", "10.1016/j.cell.2023.05.017"},
		{"10.1002/(SICI)1097-0258(19980515)17:9<1033>", "10.1002/(sici)1097-0258(19980515)17:9<1033>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeDOI(tt.input); got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePMID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"37674083", "37674083"},
		{" 37674083 ", "37674083"},
		{"PMID:37674083", "37674083"},
		{"37674083/", "37674083"},
	}

	for _, tt := range tests {
		if got := NormalizePMID(tt.input); got != tt.want {
			t.Errorf("NormalizePMID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizePMC(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PMC11239014", "PMC11239014"},
		{"pmc11239014", "PMC11239014"},
		{"11239014", "PMC11239014"},
		{"PMCID: PMC11239014", "PMC11239014"},
		{"PMC11239014/", "PMC11239014"},
	}

	for _, tt := range tests {
		if got := NormalizePMC(tt.input); got != tt.want {
			t.Errorf("NormalizePMC(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsValidDOI(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"10.1126/science.abm5224", true},
		{"10.1101/2023.09.08.556944", true},
		{"10.1126/", false},
		{"11.1126/science", false},
		{"10.1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidDOI(tt.input); got != tt.want {
			t.Errorf("IsValidDOI(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFindInText(t *testing.T) {
	text := `This article (doi: 10.1126/science.abm5224) was indexed as
PMID: 37674083 and archived as PMC11239014. See also
https://doi.org/10.1126/science.abm5224 for the published version.`

	ids := FindInText(text, "https://example.org/page", 0.7)

	byType := make(map[Type][]string)
	for _, id := range ids {
		byType[id.Type] = append(byType[id.Type], id.Value)
		if id.Confidence != 0.7 {
			t.Errorf("confidence = %v, want 0.7", id.Confidence)
		}
		if id.SourceURL != "https://example.org/page" {
			t.Errorf("source URL = %q", id.SourceURL)
		}
	}

	// The DOI appears twice but must be reported once.
	if got := byType[DOI]; len(got) != 1 || got[0] != "10.1126/science.abm5224" {
		t.Errorf("DOIs = %v, want [10.1126/science.abm5224]", got)
	}
	if got := byType[PMID]; len(got) != 1 || got[0] != "37674083" {
		t.Errorf("PMIDs = %v, want [37674083]", got)
	}
	if got := byType[PMC]; len(got) != 1 || got[0] != "PMC11239014" {
		t.Errorf("PMCs = %v, want [PMC11239014]", got)
	}
}

func TestFindInTextNoMatches(t *testing.T) {
	if ids := FindInText("nothing to see here, just prose", "u", 0.5); len(ids) != 0 {
		t.Errorf("FindInText() = %v, want empty", ids)
	}
}

func TestFindInTextBareNumbersIgnored(t *testing.T) {
	// Digit runs without a PMID label are too ambiguous to extract.
	if ids := FindInText("page 37674083 of volume 12345", "u", 0.5); len(ids) != 0 {
		t.Errorf("FindInText() = %v, want empty for unlabeled digits", ids)
	}
}
