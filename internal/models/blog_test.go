package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlogRequestValidate(t *testing.T) {
	req := &BlogRequest{Subject: "A", Content: "B", Tag: "C"}
	assert.Empty(t, req.Validate())

	req = &BlogRequest{Subject: " ", Content: "", Tag: ""}
	errs := req.Validate()
	assert.Contains(t, errs, "subject")
	assert.Contains(t, errs, "content")
	assert.Contains(t, errs, "tag")
}

func TestCommentRequestValidate(t *testing.T) {
	assert.Empty(t, (&CommentRequest{Content: "hi"}).Validate())
	assert.Contains(t, (&CommentRequest{}).Validate(), "content")
}
