package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAssignDate(t *testing.T) {
	assert.Equal(t, "미정", formatAssignDate(""))
	assert.Equal(t, "2026-03-15", formatAssignDate("2026-03-15T09:00:00Z"))
	assert.Equal(t, "2026-03-15", formatAssignDate("2026-03-15T09:00:00"))
	assert.Equal(t, "2026-03-15", formatAssignDate("2026-03-15"))
	// Unrecognized input passes through untouched.
	assert.Equal(t, "내일쯤", formatAssignDate("내일쯤"))
}

func TestAssignmentContextBlock(t *testing.T) {
	a := Assignment{
		ID:         1,
		Title:      "쇼핑몰 구축",
		Content:    "반응형 쇼핑몰을 만들어주세요",
		StartAt:    "2026-01-01",
		EndAt:      "",
		AdminName:  "김담당",
		AdminEmail: "kim@moa.works",
	}

	block := a.contextBlock()
	assert.Equal(t, "과제 제목: 쇼핑몰 구축\n"+
		"과제 내용: 반응형 쇼핑몰을 만들어주세요\n"+
		"시작일: 2026-01-01\n"+
		"마감일: 미정\n"+
		"담당자: 김담당 (kim@moa.works)", block)
}

func TestAssignmentExpired(t *testing.T) {
	past := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	assert.True(t, Assignment{EndAt: past}.Expired())
	assert.False(t, Assignment{EndAt: future}.Expired())
	assert.False(t, Assignment{EndAt: ""}.Expired())
	assert.False(t, Assignment{EndAt: "not a date"}.Expired())
}

func TestAssignmentClosed(t *testing.T) {
	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	assert.True(t, Assignment{EndCheck: true, EndAt: future}.Closed())
	assert.False(t, Assignment{EndCheck: false, EndAt: future}.Closed())

	past := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	assert.True(t, Assignment{EndCheck: false, EndAt: past}.Closed())
}
