package models

import (
	"testing"

	"github.com/goccy/go-json"
)

type patchBody struct {
	Title    Optional[string] `json:"title"`
	ParentID Optional[int64]  `json:"parent_id"`
	Year     Optional[int]    `json:"year"`
}

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	var body patchBody
	if err := json.Unmarshal([]byte(`{"title":"Dune","parent_id":null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !body.Title.HasValue() || body.Title.Value != "Dune" {
		t.Errorf("title = %+v", body.Title)
	}
	if !body.ParentID.Set || !body.ParentID.Null {
		t.Errorf("parent_id should be explicit null, got %+v", body.ParentID)
	}
	if body.ParentID.Ptr() != nil {
		t.Error("null Ptr should be nil")
	}
	if body.Year.Set {
		t.Errorf("year should be absent, got %+v", body.Year)
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var body patchBody
	if err := json.Unmarshal([]byte(`{"year":"nineteen"}`), &body); err == nil {
		t.Fatal("expected type error")
	}
}

func TestOptionalHelpers(t *testing.T) {
	s := Some(int64(4))
	if p := s.Ptr(); p == nil || *p != 4 {
		t.Errorf("Some.Ptr = %v", p)
	}
	n := Null[string]()
	if !n.Set || !n.Null || n.HasValue() {
		t.Errorf("Null = %+v", n)
	}
}

func TestEnumValidity(t *testing.T) {
	if !CategoryAnime.Valid() || MediaCategory("cartoon").Valid() {
		t.Error("category validity")
	}
	if !MediaTypeSeason.Valid() || MediaType("film").Valid() {
		t.Error("type validity")
	}
	if !StreamDASH.Valid() || StreamFormat("rtmp").Valid() {
		t.Error("stream format validity")
	}
	if !SubtitleASS.Valid() || SubtitleFormat("ttml").Valid() {
		t.Error("subtitle format validity")
	}
	if !RoleAdmin.Valid() || UserRole("guest").Valid() {
		t.Error("role validity")
	}
}
