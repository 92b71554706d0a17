package main

import (
	"fmt"
	"io"

	"videobelajar/internal/domain"
	"videobelajar/internal/store"
	cs "videobelajar/internal/sync"
)

func renderView(w io.Writer, v cs.View) {
	switch v.Status {
	case store.StatusIdle, store.StatusLoading:
		fmt.Fprintln(w, "Memuat data...")
		return
	case store.StatusFailed:
		fmt.Fprintln(w, "Terjadi Kesalahan")
		fmt.Fprintln(w, v.Error)
		fmt.Fprintln(w, "Coba lagi: coursectl list")
		return
	}

	if len(v.Courses) == 0 {
		fmt.Fprintln(w, "Belum ada kursus yang tersedia.")
		return
	}
	fmt.Fprintf(w, "Koleksi Kursus Terbaru (%d)\n\n", len(v.Courses))
	for _, c := range v.Courses {
		renderCourse(w, c)
	}
}

func renderCourse(w io.Writer, c domain.Course) {
	fmt.Fprintf(w, "[%s] %s\n", c.ID, c.Title)
	fmt.Fprintf(w, "    %s • %s | %s | %s\n", c.Category, c.Level, c.Duration, domain.FormatPrice(c.Price))
	if c.Description != "" {
		fmt.Fprintf(w, "    %s\n", c.Description)
	}
}
