package langdetect

import (
	"testing"
)

func BenchmarkDetectTemplate(b *testing.B) {
	content := []byte(`@model User
<h1>@Model.Name</h1>
@if Model.Admin {
	<p>admin</p>
}`)
	b.ResetTimer()
	for range b.N {
		Detect("page.html", content)
	}
}

func BenchmarkDetectHTML(b *testing.B) {
	content := []byte(`<!DOCTYPE html>
<html><head><title>x</title></head><body><p>contact: me@@example.com</p></body></html>`)
	b.ResetTimer()
	for range b.N {
		Detect("index.html", content)
	}
}

func BenchmarkIsTemplatePath(b *testing.B) {
	exts := DefaultExtensions()
	b.ResetTimer()
	for range b.N {
		IsTemplatePath("Views/Shared/_Layout.cshtml", exts)
	}
}
