package epub_test

import (
	"fmt"
	"log"

	epub "github.com/simp-lee/epubreader"
)

func ExampleOpen() {
	book, err := epub.Open("book.epub")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(book.Metadata.Title, "by", book.Metadata.Creator)
	for _, e := range book.TOC() {
		fmt.Printf("%d. %s\n", e.Index+1, e.Title)
	}
}

func ExampleParse() {
	a, err := epub.OpenArchiveFile("book.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	book, err := epub.Parse(a, "My Book", epub.NewBookID())
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range book.Warnings {
		log.Println("warning:", w)
	}
	fmt.Println(len(book.Chapters), "chapters")
}
