package lexer

import "testing"

func collectKinds(src string) []TokenKind {
	l := New(src)
	var kinds []TokenKind
	for {
		tok := l.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == EOF {
			return kinds
		}
	}
}

func TestLexer_BasicCreateTable(t *testing.T) {
	src := `CREATE TABLE users (id integer PRIMARY KEY, name varchar(100) NOT NULL);`
	kinds := collectKinds(src)
	want := []TokenKind{
		KEYWORD, KEYWORD, IDENTIFIER, LPAREN,
		IDENTIFIER, IDENTIFIER, KEYWORD, KEYWORD, COMMA,
		IDENTIFIER, IDENTIFIER, LPAREN, NUMBER, RPAREN, KEYWORD, KEYWORD,
		RPAREN, SEMICOLON, EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("token count = %d, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range kinds {
		if k != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, k, want[i])
		}
	}
}

func TestLexer_QuotedIdentifierEscapes(t *testing.T) {
	l := New(`"my""table"`)
	tok := l.Next()
	if tok.Kind != IDENTIFIER || tok.Lexeme != `my"table` {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexer_StringLiteralEscapes(t *testing.T) {
	l := New(`'it''s \x'`)
	tok := l.Next()
	if tok.Kind != STRING_LITERAL || tok.Lexeme != `it's x` {
		t.Fatalf("got %+v", tok)
	}
}

func TestLexer_KeywordsCaseInsensitive(t *testing.T) {
	l := New("Create TABLE CrEaTe")
	for i := 0; i < 3; i++ {
		tok := l.Next()
		if tok.Kind != KEYWORD {
			t.Fatalf("token %d: got %v, want KEYWORD", i, tok.Kind)
		}
	}
}

func TestLexer_UnterminatedStringSetsError(t *testing.T) {
	l := New(`'unterminated`)
	tok := l.Next()
	if tok.Kind != ERROR {
		t.Fatalf("got %v, want ERROR", tok.Kind)
	}
	if !l.HadError() {
		t.Fatal("HadError() = false, want true")
	}
}

func TestLexer_NumberForms(t *testing.T) {
	for _, src := range []string{"1", "1.5", "1e10", "1.5e-10", "1E+3"} {
		l := New(src)
		tok := l.Next()
		if tok.Kind != NUMBER || tok.Lexeme != src {
			t.Errorf("src %q: got %+v", src, tok)
		}
	}
}

func TestLexer_DoubleColon(t *testing.T) {
	l := New(`'x'::text`)
	if k := l.Next().Kind; k != STRING_LITERAL {
		t.Fatalf("got %v", k)
	}
	if k := l.Next().Kind; k != DOUBLECOLON {
		t.Fatalf("got %v", k)
	}
	if k := l.Next().Kind; k != IDENTIFIER {
		t.Fatalf("got %v", k)
	}
}

func TestLexer_CommentsSkipped(t *testing.T) {
	src := "-- comment\nCREATE /* inline */ TABLE"
	kinds := collectKinds(src)
	want := []TokenKind{KEYWORD, KEYWORD, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %v", kinds)
	}
}
