package canon

// Book holds metadata for a single book of the canon.
type Book struct {
	Abbrev      string `json:"abbrev"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Order       int    `json:"order"`
	Chapters    int    `json:"chapterCount"`
}

// BookLister supplies the ordered book list an Index is built from.
type BookLister interface {
	ListBooks() []Book
}

// Protestant is the built-in 66-book canon in canonical order. Abbreviations
// follow the bible.json dataset the reader ships with.
var Protestant = BookList{
	// ── Old Testament ──────────────────────────────────────────────────────────
	{"gn", "Genesis", "창세기", 1, 50},
	{"ex", "Exodus", "출애굽기", 2, 40},
	{"lv", "Leviticus", "레위기", 3, 27},
	{"nm", "Numbers", "민수기", 4, 36},
	{"dt", "Deuteronomy", "신명기", 5, 34},
	{"js", "Joshua", "여호수아", 6, 24},
	{"jud", "Judges", "사사기", 7, 21},
	{"rt", "Ruth", "룻기", 8, 4},
	{"1sm", "1 Samuel", "사무엘상", 9, 31},
	{"2sm", "2 Samuel", "사무엘하", 10, 24},
	{"1kgs", "1 Kings", "열왕기상", 11, 22},
	{"2kgs", "2 Kings", "열왕기하", 12, 25},
	{"1ch", "1 Chronicles", "역대상", 13, 29},
	{"2ch", "2 Chronicles", "역대하", 14, 36},
	{"ezr", "Ezra", "에스라", 15, 10},
	{"ne", "Nehemiah", "느헤미야", 16, 13},
	{"et", "Esther", "에스더", 17, 10},
	{"job", "Job", "욥기", 18, 42},
	{"ps", "Psalms", "시편", 19, 150},
	{"prv", "Proverbs", "잠언", 20, 31},
	{"ec", "Ecclesiastes", "전도서", 21, 12},
	{"so", "Song of Solomon", "아가", 22, 8},
	{"is", "Isaiah", "이사야", 23, 66},
	{"jr", "Jeremiah", "예레미야", 24, 52},
	{"lm", "Lamentations", "예레미야애가", 25, 5},
	{"ez", "Ezekiel", "에스겔", 26, 48},
	{"dn", "Daniel", "다니엘", 27, 12},
	{"ho", "Hosea", "호세아", 28, 14},
	{"jl", "Joel", "요엘", 29, 3},
	{"am", "Amos", "아모스", 30, 9},
	{"ob", "Obadiah", "오바댜", 31, 1},
	{"jn", "Jonah", "요나", 32, 4},
	{"mi", "Micah", "미가", 33, 7},
	{"na", "Nahum", "나훔", 34, 3},
	{"hk", "Habakkuk", "하박국", 35, 3},
	{"zp", "Zephaniah", "스바냐", 36, 3},
	{"hg", "Haggai", "학개", 37, 2},
	{"zc", "Zechariah", "스가랴", 38, 14},
	{"ml", "Malachi", "말라기", 39, 4},
	// ── New Testament ─────────────────────────────────────────────────────────
	{"mt", "Matthew", "마태복음", 40, 28},
	{"mk", "Mark", "마가복음", 41, 16},
	{"lk", "Luke", "누가복음", 42, 24},
	{"jo", "John", "요한복음", 43, 21},
	{"act", "Acts", "사도행전", 44, 28},
	{"rm", "Romans", "로마서", 45, 16},
	{"1co", "1 Corinthians", "고린도전서", 46, 16},
	{"2co", "2 Corinthians", "고린도후서", 47, 13},
	{"gl", "Galatians", "갈라디아서", 48, 6},
	{"eph", "Ephesians", "에베소서", 49, 6},
	{"ph", "Philippians", "빌립보서", 50, 4},
	{"cl", "Colossians", "골로새서", 51, 4},
	{"1ts", "1 Thessalonians", "데살로니가전서", 52, 5},
	{"2ts", "2 Thessalonians", "데살로니가후서", 53, 3},
	{"1tm", "1 Timothy", "디모데전서", 54, 6},
	{"2tm", "2 Timothy", "디모데후서", 55, 4},
	{"tt", "Titus", "디도서", 56, 3},
	{"phm", "Philemon", "빌레몬서", 57, 1},
	{"hb", "Hebrews", "히브리서", 58, 13},
	{"jm", "James", "야고보서", 59, 5},
	{"1pe", "1 Peter", "베드로전서", 60, 5},
	{"2pe", "2 Peter", "베드로후서", 61, 3},
	{"1jo", "1 John", "요한일서", 62, 5},
	{"2jo", "2 John", "요한이서", 63, 1},
	{"3jo", "3 John", "요한삼서", 64, 1},
	{"jd", "Jude", "유다서", 65, 1},
	{"re", "Revelation", "요한계시록", 66, 22},
}

// BookList is a fixed, ordered book list.
type BookList []Book

// ListBooks returns a copy of the list.
func (l BookList) ListBooks() []Book {
	out := make([]Book, len(l))
	copy(out, l)
	return out
}

// DisplayNames maps English book names to their display names. Datasets that
// carry only English names are resolved through it.
var DisplayNames = func() map[string]string {
	m := make(map[string]string, len(Protestant))
	for _, b := range Protestant {
		m[b.Name] = b.DisplayName
	}
	return m
}()
