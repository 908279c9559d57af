package helpers

import "testing"

func TestExtractStructuredStripsJSONFence(t *testing.T) {
	in := "```json\n{\"steps\": [\"check the weather\"]}\n```"
	got := ExtractStructured(in)
	want := `{"steps": ["check the weather"]}`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractStructuredPassesBareTextThrough(t *testing.T) {
	in := `{"tool": "weather", "args": {"location": "Paris"}}`
	if got := ExtractStructured(in); got != in {
		t.Fatalf("expected input unchanged, got %q", got)
	}
}

func TestExtractStructuredTildeFence(t *testing.T) {
	in := "~~~json\n{\"a\":1}\n~~~"
	if got := ExtractStructured(in); got != `{"a":1}` {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestExtractStructuredIdempotent(t *testing.T) {
	cases := []string{
		"```json\n{\"steps\": []}\n```",
		"plain text answer",
		"",
		"```\n```json\n{\"x\":2}\n```\n```",
		"{\"nested\": \"```json fence inside string```\"}",
	}
	for _, c := range cases {
		once := ExtractStructured(c)
		twice := ExtractStructured(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", c, once, twice)
		}
	}
}

func TestExtractJSONFromChatter(t *testing.T) {
	in := "Sure, here is the plan:\n{\"steps\": [\"look up arxiv\"]} hope that helps"
	got, err := ExtractJSON(in)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if got != `{"steps": ["look up arxiv"]}` {
		t.Fatalf("unexpected extraction %q", got)
	}
}

func TestExtractJSONHandlesBracesInStrings(t *testing.T) {
	in := `{"tool": "web_search", "args": {"query": "what is {x} in math?"}}`
	got, err := ExtractJSON(in)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	if got != in {
		t.Fatalf("expected full object, got %q", got)
	}
}

func TestExtractJSONErrorsOnProse(t *testing.T) {
	if _, err := ExtractJSON("I could not decide on a tool."); err == nil {
		t.Fatal("expected error for prose input")
	}
}

func TestExtractStructuredStripsBOM(t *testing.T) {
	in := "\uFEFF```json\n{\"steps\": []}\n```"
	if got := ExtractStructured(in); got != `{"steps": []}` {
		t.Fatalf("BOM input not cleaned: %q", got)
	}
	if got := ExtractStructured("\uFEFFplain text"); got != "plain text" {
		t.Fatalf("BOM not stripped from plain text: %q", got)
	}
}
