package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/content"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
)

var (
	nowFunc = time.Now // mockable

	errNotTeacher = errors.New("only teachers can own courses")
)

type sampleLesson struct {
	title string
	body  string // legacy HTML body
	quiz  lesson.Quiz
}

type sampleCourse struct {
	course  course.NewCourse
	lessons []sampleLesson
}

var sampleCourses = []sampleCourse{
	{
		course: course.NewCourse{
			Title:       "Fractions",
			Description: "Halves, thirds and quarters with everyday objects.",
			Subject:     "Math",
			Grade:       "4",
			IsPublic:    true,
		},
		lessons: []sampleLesson{
			{
				title: "What is a half?",
				body:  `<h2>Sharing a mango</h2><p>Cut it in <strong>two equal parts</strong>: each part is one half.</p>`,
				quiz:  lesson.Quiz{Question: "How many halves make a whole?", Options: []string{"1", "2", "4"}, CorrectOption: 1},
			},
			{
				title: "Thirds and quarters",
				body:  `<p>Three equal parts are <em>thirds</em>. Four equal parts are <em>quarters</em>.</p>`,
				quiz:  lesson.Quiz{Question: "Which is bigger?", Options: []string{"1/3", "1/4"}, CorrectOption: 0},
			},
		},
	},
	{
		course: course.NewCourse{
			Title:       "The water cycle",
			Description: "Where rain comes from, and where it goes.",
			Subject:     "Science",
			Grade:       "5",
		},
		lessons: []sampleLesson{
			{
				title: "Evaporation",
				body:  `<p>The sun heats the river and water turns into vapour.</p><ul><li>heat</li><li>vapour</li></ul>`,
				quiz:  lesson.Quiz{Question: "What turns water into vapour?", Options: []string{"The moon", "The sun"}, CorrectOption: 1},
			},
		},
	},
}

// seed adds the sample courses to the dashboard of the teacher owning `email`.
// Lesson bodies are saved as-is, in the legacy HTML format.
func (cli *commandLine) seed(email string) error {
	ctx := context.Background()
	usr, err := cli.svcs.User.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsTeacher() && !usr.IsAdmin() {
		return errNotTeacher
	}

	for _, sc := range sampleCourses {
		c, err := cli.svcs.Course.Create(ctx, usr, sc.course)
		if err != nil {
			return errors.Wrapf(err, "creating course %q", sc.course.Title)
		}
		for i, sl := range sc.lessons {
			now := nowFunc().UTC()
			quiz := sl.quiz
			quiz.ID = content.NewID()
			l := lesson.Lesson{
				CourseID:   c.ID,
				Title:      sl.title,
				Slug:       core.Slugify(sl.title),
				Order:      i,
				Content:    sl.body,
				Quizzes:    []lesson.Quiz{quiz},
				Flashcards: []lesson.Flashcard{},
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			l.Media = lesson.MediaFromBlocks(l.Blocks())
			if _, err = cli.repos.Lesson.CreateLesson(ctx, l); err != nil {
				return errors.Wrapf(err, "creating lesson %q", sl.title)
			}
		}
		cli.printf("course %q seeded with %d lessons\n", c.Title, len(sc.lessons))
	}
	return nil
}
