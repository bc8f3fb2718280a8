package api

import "testing"

func TestHijriDate_Format(t *testing.T) {
	tests := []struct {
		name string
		h    HijriDate
		want string
	}{
		{
			name: "full date",
			h: HijriDate{
				Day:         "10",
				Month:       HijriMonth{Number: 8, En: "Sha'ban"},
				Year:        "1447",
				Designation: HijriDesignation{Abbreviated: "AH"},
			},
			want: "10 Sha'ban 1447 AH",
		},
		{
			name: "missing abbreviated defaults to AH",
			h: HijriDate{
				Day:   "1",
				Month: HijriMonth{Number: 1, En: "Muharram"},
				Year:  "1448",
			},
			want: "1 Muharram 1448 AH",
		},
		{
			name: "empty day returns empty",
			h: HijriDate{
				Month: HijriMonth{En: "Ramadan"},
				Year:  "1447",
			},
			want: "",
		},
		{
			name: "empty month returns empty",
			h: HijriDate{
				Day:  "15",
				Year: "1447",
			},
			want: "",
		},
		{
			name: "empty year returns empty",
			h: HijriDate{
				Day:   "15",
				Month: HijriMonth{En: "Ramadan"},
			},
			want: "",
		},
		{
			name: "all empty returns empty",
			h:    HijriDate{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.h.Format()
			if got != tt.want {
				t.Errorf("HijriDate.Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHijriDate_FormatArabic(t *testing.T) {
	h := HijriDate{
		Day:   "27",
		Month: HijriMonth{Number: 4, En: "Rabīʿ al-thānī", Ar: "رَبيع الثاني"},
		Year:  "1448",
	}
	if got, want := h.FormatArabic(), "27 رَبيع الثاني 1448 هـ"; got != want {
		t.Errorf("FormatArabic() = %q, want %q", got, want)
	}

	h.Month.Ar = ""
	if got, want := h.FormatArabic(), "27 Rabīʿ al-thānī 1448 AH"; got != want {
		t.Errorf("FormatArabic() without Arabic month = %q, want %q", got, want)
	}
}

func TestTimings_Get(t *testing.T) {
	tm := Timings{Fajr: "04:32", Isha: "19:20", Lastthird: "01:51"}

	for name, want := range map[string]string{"Fajr": "04:32", "Isha": "19:20", "Lastthird": "01:51", "Dhuhr": ""} {
		got, ok := tm.Get(name)
		if !ok {
			t.Errorf("Get(%q) reported unknown name", name)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", name, got, want)
		}
	}

	if _, ok := tm.Get("Tahajjud"); ok {
		t.Error("Get(Tahajjud) should report unknown name")
	}
}

func TestMethods(t *testing.T) {
	seen := make(map[int]bool)
	for _, m := range Methods {
		if seen[m.ID] {
			t.Errorf("duplicate calculation method ID: %d", m.ID)
		}
		seen[m.ID] = true
		if m.ID < 0 || m.ID > 23 || m.Name == "" {
			t.Errorf("bad method entry %+v", m)
		}
	}
	if MethodName(DefaultMethod) != "Umm Al-Qura University, Makkah" {
		t.Errorf("MethodName(DefaultMethod) = %q", MethodName(DefaultMethod))
	}
	if MethodName(6) != "" {
		t.Errorf("MethodName(6) = %q, want empty", MethodName(6))
	}
}
