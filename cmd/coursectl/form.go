package main

import (
	"flag"

	"videobelajar/internal/domain"
)

// courseFlags binds one flag per editable course field.
type courseFlags struct {
	title, category, level, thumbnail, description, duration, price *string
}

func formFlags(fs *flag.FlagSet) *courseFlags {
	return &courseFlags{
		title:       fs.String("title", "", "course title"),
		category:    fs.String("category", "", "category, e.g. Frontend"),
		level:       fs.String("level", "", "level, e.g. Pemula"),
		thumbnail:   fs.String("thumbnail", "", "thumbnail URL"),
		description: fs.String("description", "", "description"),
		duration:    fs.String("duration", "", "duration, e.g. 12 jam"),
		price:       fs.String("price", "", "price in rupiah; 0 or non-numeric means free"),
	}
}

// build overlays the flags actually given on the command line onto base.
func (f *courseFlags) build(fs *flag.FlagSet, base domain.CourseForm) domain.CourseForm {
	form := base
	fs.Visit(func(fl *flag.Flag) {
		v := fl.Value.String()
		switch fl.Name {
		case "title":
			form.Title = v
		case "category":
			form.Category = v
		case "level":
			form.Level = v
		case "thumbnail":
			form.Thumbnail = v
		case "description":
			form.Description = v
		case "duration":
			form.Duration = v
		case "price":
			form.Price = v
		}
	})
	return form
}
