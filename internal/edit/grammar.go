package edit

import "article-admin/internal/article"

func AddPoint(points []article.GrammarPoint) []article.GrammarPoint {
	return Append(points, article.GrammarPoint{Examples: []article.GrammarExample{}})
}

func DeletePoint(points []article.GrammarPoint, i int) ([]article.GrammarPoint, error) {
	return RemoveAt(points, i)
}

func SetPointTitle(points []article.GrammarPoint, i int, title string) ([]article.GrammarPoint, error) {
	return update(points, i, func(p article.GrammarPoint) article.GrammarPoint {
		p.Title = title
		return p
	})
}

func SetPointExplanation(points []article.GrammarPoint, i int, text string) ([]article.GrammarPoint, error) {
	return update(points, i, func(p article.GrammarPoint) article.GrammarPoint {
		p.Explanation = text
		return p
	})
}

func AddExample(points []article.GrammarPoint, i int) ([]article.GrammarPoint, error) {
	return update(points, i, func(p article.GrammarPoint) article.GrammarPoint {
		p.Examples = Append(p.Examples, article.GrammarExample{})
		return p
	})
}

func DeleteExample(points []article.GrammarPoint, i, j int) ([]article.GrammarPoint, error) {
	return updateExamples(points, i, func(ex []article.GrammarExample) ([]article.GrammarExample, error) {
		return RemoveAt(ex, j)
	})
}

func SetExampleSource(points []article.GrammarPoint, i, j int, text string) ([]article.GrammarPoint, error) {
	return updateExamples(points, i, func(ex []article.GrammarExample) ([]article.GrammarExample, error) {
		return update(ex, j, func(e article.GrammarExample) article.GrammarExample {
			e.SourceText = text
			return e
		})
	})
}

func SetExampleTarget(points []article.GrammarPoint, i, j int, text string) ([]article.GrammarPoint, error) {
	return updateExamples(points, i, func(ex []article.GrammarExample) ([]article.GrammarExample, error) {
		return update(ex, j, func(e article.GrammarExample) article.GrammarExample {
			e.TargetText = text
			return e
		})
	})
}

func updateExamples(points []article.GrammarPoint, i int, fn func([]article.GrammarExample) ([]article.GrammarExample, error)) ([]article.GrammarPoint, error) {
	if err := checkIndex(i, len(points)); err != nil {
		return points, err
	}
	ex, err := fn(points[i].Examples)
	if err != nil {
		return points, err
	}
	p := points[i]
	p.Examples = ex
	return ReplaceAt(points, i, p)
}
