package repository

import (
	"testing"
)

// 各Postgresリポジトリがインターフェースを満たすことはコンパイル時チェックで
// 保証される（各ファイル末尾のvar宣言）。ここではコンストラクタの健全性のみ検証する。

func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	if repo := NewPostgresUserRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	if repo := NewPostgresSessionRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresCatalogRepo_Initializes(t *testing.T) {
	if repo := NewPostgresCatalogRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresVendorRepo_Initializes(t *testing.T) {
	if repo := NewPostgresVendorRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresVendorFeedRepo_Initializes(t *testing.T) {
	if repo := NewPostgresVendorFeedRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresAnnouncementRepo_Initializes(t *testing.T) {
	if repo := NewPostgresAnnouncementRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestNewPostgresBookingRepo_Initializes(t *testing.T) {
	if repo := NewPostgresBookingRepo(nil); repo == nil {
		t.Fatal("expected non-nil repo")
	}
}
