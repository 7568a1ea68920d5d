package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rakmakan/ai-resume/internal/domain"
)

// promptParams fills the options interactively, mirroring the flag defaults.
// Only used when stdin is a terminal and no -title was given.
func promptParams(opts *options) {
	reader := bufio.NewReader(os.Stdin)
	read := func(prompt string) string {
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return ""
		}
		return strings.TrimSpace(line)
	}

	fmt.Println("LinkedIn Job Search")
	fmt.Println("-------------------")

	for opts.title == "" {
		opts.title = read("Job title: ")
		if opts.title == "" {
			fmt.Println("A job title is required.")
		}
	}

	if v := read("Years of experience (enter to skip): "); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.experience = n
		}
	}

	opts.location = read("Location (city, 'Canada' for major cities, enter for any): ")

	if v := read(fmt.Sprintf("Max applicants [%d]: ", domain.DefaultMaxApplicants)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.maxApplicants = n
		}
	}

	if v := read(fmt.Sprintf("Max results [%d]: ", domain.DefaultMaxResults)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.numResults = n
		}
	}

	fmt.Println("Time window: 1) 24h  2) 48h  3) 1 week  4) 2 weeks")
	switch read("Choose [2]: ") {
	case "1":
		opts.timeWindow = "24h"
	case "3":
		opts.timeWindow = "1w"
	case "4":
		opts.timeWindow = "2w"
	default:
		opts.timeWindow = "48h"
	}

	switch strings.ToLower(read("Fetch full descriptions? (slower) [y/N]: ")) {
	case "y", "yes":
		opts.details = true
	}
}
