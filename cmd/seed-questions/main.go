package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/database"
	"github.com/lingvoclub/placement-backend/internal/logger"
	"github.com/lingvoclub/placement-backend/internal/model"
	"github.com/lingvoclub/placement-backend/internal/repository"
)

// The question bank arrives as a directory tree authored by methodologists:
//
//	<root>/<level>/Грамматика/<topic>.xlsx
//	<root>/<level>/Лексика/<topic>.xlsx
//	<root>/<level>/Восприятие/Аудирование/Вопросы.xlsx + Аудиофайлы/*.mp3
//	<root>/<level>/Восприятие/Чтение/Вопросы.xlsx + Тексты/*.txt
//
// Each workbook sheet is named after its answer type; rows hold the
// question and its options with the correct ones first. Options are
// shuffled at load time so their stored order carries no signal.

var answerTypeBySheet = map[string]model.AnswerType{
	"Выбор одного варианта":      model.AnswerTypeSelectOne,
	"Выбор нескольких вариантов": model.AnswerTypeSelectMultiple,
	"Заполнение пропуска":        model.AnswerTypeFillTheBlank,
}

func main() {
	var dataDir string
	flag.StringVar(&dataDir, "path", "./test_data", "Path to the question bank directory")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	questions, mediaFiles, err := collect(dataDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read question bank")
	}
	log.Info().
		Int("questions", len(questions)).
		Int("media_files", len(mediaFiles)).
		Msg("Question bank scanned")

	for i := range questions {
		if err := questionRepo.Create(ctx, &questions[i]); err != nil {
			log.Fatal().Err(err).Str("question", questions[i].QuestionTitle).Msg("Failed to insert question")
		}
	}
	log.Info().Msg("Questions added to database")

	if err := copyMedia(mediaFiles, cfg.MediaDir); err != nil {
		log.Fatal().Err(err).Msg("Failed to copy media files")
	}
	log.Info().Str("dir", cfg.MediaDir).Msg("Media files copied")
}

// collect walks the bank directory and parses every topic workbook.
func collect(root string, log zerolog.Logger) ([]model.Question, []string, error) {
	levelDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", root, err)
	}

	var questions []model.Question
	var mediaFiles []string

	for _, levelDir := range levelDirs {
		if !levelDir.IsDir() {
			return nil, nil, fmt.Errorf("%s: expected a level directory", levelDir.Name())
		}
		level, err := model.ParseLanguageLevel(strings.ReplaceAll(levelDir.Name(), ".", "_"))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("level", level.String()).Msg("Scanning level")

		levelPath := filepath.Join(root, levelDir.Name())
		metaDirs, err := os.ReadDir(levelPath)
		if err != nil {
			return nil, nil, err
		}

		for _, metaDir := range metaDirs {
			metaPath := filepath.Join(levelPath, metaDir.Name())
			switch metaDir.Name() {
			case "Грамматика":
				qs, err := collectTopicFiles(level, model.CategoryGrammar, metaPath)
				if err != nil {
					return nil, nil, err
				}
				questions = append(questions, qs...)
			case "Лексика":
				qs, err := collectTopicFiles(level, model.CategoryVocabulary, metaPath)
				if err != nil {
					return nil, nil, err
				}
				questions = append(questions, qs...)
			case "Восприятие":
				qs, files, err := collectComprehension(level, metaPath)
				if err != nil {
					return nil, nil, err
				}
				questions = append(questions, qs...)
				mediaFiles = append(mediaFiles, files...)
			default:
				return nil, nil, fmt.Errorf("unknown meta category %q", metaDir.Name())
			}
		}
	}
	return questions, mediaFiles, nil
}

func collectTopicFiles(level model.LanguageLevel, category model.QuestionCategory, dir string) ([]model.Question, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	for _, entry := range entries {
		qs, err := parseTopicFile(level, category, filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		questions = append(questions, qs...)
	}
	return questions, nil
}

// collectComprehension handles the Восприятие subtree: listening topics
// with audio clips and reading topics with text passages.
func collectComprehension(level model.LanguageLevel, dir string) ([]model.Question, []string, error) {
	var questions []model.Question
	var mediaFiles []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		var category model.QuestionCategory
		var mediaSubdir, mediaGlob string
		switch entry.Name() {
		case "Аудирование":
			category, mediaSubdir, mediaGlob = model.CategoryListening, "Аудиофайлы", "*.mp3"
		case "Чтение":
			category, mediaSubdir, mediaGlob = model.CategoryReading, "Тексты", "*.txt"
		default:
			return nil, nil, fmt.Errorf("unknown comprehension category %q", entry.Name())
		}

		topicPath := filepath.Join(dir, entry.Name())
		qs, err := parseTopicFile(level, category, filepath.Join(topicPath, "Вопросы.xlsx"))
		if err != nil {
			return nil, nil, err
		}
		questions = append(questions, qs...)

		files, err := filepath.Glob(filepath.Join(topicPath, mediaSubdir, mediaGlob))
		if err != nil {
			return nil, nil, err
		}
		mediaFiles = append(mediaFiles, files...)
	}
	return questions, mediaFiles, nil
}

func parseTopicFile(level model.LanguageLevel, category model.QuestionCategory, path string) ([]model.Question, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	topicTitle := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if category == model.CategoryListening || category == model.CategoryReading {
		// Comprehension workbooks are always named Вопросы.xlsx; the topic
		// is the comprehension kind itself.
		topicTitle = filepath.Base(filepath.Dir(path))
	}
	hasMedia := category == model.CategoryListening || category == model.CategoryReading

	var questions []model.Question
	for _, sheet := range f.GetSheetList() {
		answerType, ok := answerTypeBySheet[sheet]
		if !ok {
			return nil, fmt.Errorf("%s: unknown answer type sheet %q", path, sheet)
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", path, sheet, err)
		}
		for i, row := range rows {
			if i == 0 {
				continue // header
			}
			values := compact(row)
			if len(values) == 0 {
				continue
			}

			q, err := buildQuestion(level, category, topicTitle, answerType, values, hasMedia)
			if err != nil {
				return nil, fmt.Errorf("%s/%s row %d: %w", path, sheet, i+1, err)
			}
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func buildQuestion(
	level model.LanguageLevel,
	category model.QuestionCategory,
	topicTitle string,
	answerType model.AnswerType,
	values []string,
	hasMedia bool,
) (*model.Question, error) {
	q := &model.Question{
		Level:      level,
		Category:   category,
		TopicTitle: topicTitle,
		AnswerType: answerType,
	}

	if hasMedia {
		if len(values) < 2 {
			return nil, fmt.Errorf("media row needs a filepath and a question")
		}
		mediaPath := values[0]
		q.Filepath = &mediaPath
		values = values[1:]
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("row needs a question and an answer")
	}
	q.QuestionTitle = values[0]

	switch answerType {
	case model.AnswerTypeSelectOne:
		options, correct, err := shuffleOptions(values[1:2], values[2:])
		if err != nil {
			return nil, err
		}
		q.AnswerOptions = options
		q.CorrectAnswer = correct

	case model.AnswerTypeSelectMultiple:
		correctCount, err := strconv.Atoi(values[1])
		if err != nil || correctCount < 1 || 2+correctCount > len(values) {
			return nil, fmt.Errorf("bad correct answers count %q", values[1])
		}
		options, correct, err := shuffleOptions(values[2:2+correctCount], values[2+correctCount:])
		if err != nil {
			return nil, err
		}
		q.AnswerOptions = options
		q.CorrectAnswer = correct

	case model.AnswerTypeFillTheBlank:
		// The cell may hold a bare string or a JSON array of accepted
		// spellings; both are stored verbatim.
		q.CorrectAnswer = values[1]
	}
	return q, nil
}

// shuffleOptions mixes correct and distractor options, returning the
// JSON-encoded option list and the comma-joined sorted indices of the
// correct ones.
func shuffleOptions(correct, distractors []string) (*string, string, error) {
	type option struct {
		value   string
		correct bool
	}
	options := make([]option, 0, len(correct)+len(distractors))
	for _, v := range correct {
		options = append(options, option{value: v, correct: true})
	}
	for _, v := range distractors {
		options = append(options, option{value: v})
	}
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	values := make([]string, len(options))
	var correctIndices []int
	for i, opt := range options {
		values[i] = opt.value
		if opt.correct {
			correctIndices = append(correctIndices, i)
		}
	}
	sort.Ints(correctIndices)

	encoded, err := json.Marshal(values)
	if err != nil {
		return nil, "", err
	}
	encodedStr := string(encoded)

	indices := make([]string, len(correctIndices))
	for i, idx := range correctIndices {
		indices[i] = strconv.Itoa(idx)
	}
	return &encodedStr, strings.Join(indices, ","), nil
}

func compact(row []string) []string {
	values := make([]string, 0, len(row))
	for _, cell := range row {
		if trimmed := strings.TrimSpace(cell); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func copyMedia(files []string, mediaDir string) error {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return err
	}
	for _, src := range files {
		if err := copyFile(src, filepath.Join(mediaDir, filepath.Base(src))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
