package rag

import "github.com/heartmarshall/langtutor-backend/internal/domain"

// seedGrammarRules is the starter knowledge base: core grammar for the
// four supported languages plus language-agnostic entries.
var seedGrammarRules = []domain.Document{
	{
		ID:       "en_phrasal_verbs",
		Language: "English",
		Content:  "Phrasal verbs are verbs combined with prepositions or adverbs that create new meanings. 'Give up' means to stop trying. 'Look after' means to take care of. 'Put off' means to delay. The meaning often can't be guessed from the individual words. Example: 'I had to put off the meeting' means I had to delay it.",
	},
	{
		ID:       "en_conditionals",
		Language: "English",
		Content:  "Conditionals express 'if...then' situations. Zero conditional (facts): 'If you heat water, it boils.' First conditional (likely future): 'If it rains, I will stay home.' Second conditional (unlikely): 'If I won the lottery, I would travel.' Third conditional (past unreal): 'If I had studied, I would have passed.'",
	},
	{
		ID:       "en_articles",
		Language: "English",
		Content:  "Use 'a' before consonant sounds ('a book'), 'an' before vowel sounds ('an apple'). Use 'the' for specific things both speaker and listener know ('the sun', 'the book you mentioned'). No article for general plurals ('Dogs are friendly') or abstract concepts ('Love is important').",
	},
	{
		ID:       "en_tenses",
		Language: "English",
		Content:  "Present simple (habits): 'I work every day.' Present continuous (now): 'I am working.' Past simple (finished): 'I worked yesterday.' Present perfect (past connected to now): 'I have worked here for 5 years.' Past perfect (before another past event): 'I had already eaten when she arrived.'",
	},
	{
		ID:       "en_confusing_pairs",
		Language: "English",
		Content:  "Common confusing words: affect (verb) vs effect (noun): 'The rain affects my mood' vs 'The effect is clear.' Their (possession) vs there (place) vs they're (they are). Its (belonging to it) vs it's (it is). Your (belonging to you) vs you're (you are).",
	},
	{
		ID:       "en_passive_voice",
		Language: "English",
		Content:  "Passive voice puts focus on the action, not who does it. Active: 'The chef cooked the meal.' Passive: 'The meal was cooked (by the chef).' Form: be + past participle. Use passive when the doer is unknown, unimportant, or obvious. 'The window was broken.' 'English is spoken worldwide.'",
	},
	{
		ID:       "en_prepositions",
		Language: "English",
		Content:  "Prepositions show relationships. Time: at (specific time: at 3pm), on (days: on Monday), in (longer periods: in March, in 2024). Place: at (point: at the door), on (surface: on the table), in (enclosed: in the box). Movement: to (destination), into (entering), onto (surface).",
	},
	{
		ID:       "en_idioms",
		Language: "English",
		Content:  "Idioms are expressions with non-literal meanings. 'Break the ice' = start a conversation. 'Piece of cake' = very easy. 'Hit the nail on the head' = exactly right. 'Under the weather' = feeling sick. 'Cost an arm and a leg' = very expensive. Learn them as fixed phrases.",
	},
	{
		ID:       "zh_tones",
		Language: "Chinese",
		Content:  "Chinese has 4 main tones plus a neutral tone. First tone (ˉ): high and flat (mā 妈 = mother). Second tone (ˊ): rising (má 麻 = hemp). Third tone (ˇ): falling-rising (mǎ 马 = horse). Fourth tone (ˋ): falling (mà 骂 = scold). Wrong tones change meaning completely!",
	},
	{
		ID:       "zh_sentence_structure",
		Language: "Chinese",
		Content:  "Chinese basic word order is Subject-Verb-Object (SVO) like English. 我吃饭 (Wǒ chī fàn) = I eat rice. Time and location come before the verb: 我今天在家吃饭 (I today at-home eat-rice). Question words stay in place: 你吃什么？(You eat what?) = What do you eat?",
	},
	{
		ID:       "zh_measure_words",
		Language: "Chinese",
		Content:  "Chinese uses measure words (量词) between numbers and nouns. 一个人 (yī gè rén) = one person (个 is general). 一本书 (yī běn shū) = one book (本 for books). 一只猫 (yī zhī māo) = one cat (只 for animals). Each noun category has specific measure words.",
	},
	{
		ID:       "zh_aspect_particles",
		Language: "Chinese",
		Content:  "Chinese uses particles instead of verb conjugation to show tense/aspect. 了 (le): completed action (我吃了 = I ate). 过 (guò): past experience (我吃过 = I have eaten before). 着 (zhe): ongoing state (他坐着 = he is sitting). 在 (zài): in progress (我在吃 = I am eating).",
	},
	{
		ID:       "zh_ba_structure",
		Language: "Chinese",
		Content:  "The 把 (bǎ) structure emphasizes what happens to an object. Pattern: Subject + 把 + Object + Verb + Result. 我把书放在桌子上 (I BA book put on table) = I put the book on the table. Used when the action changes the object's state or position.",
	},
	{
		ID:       "ru_cases",
		Language: "Russian",
		Content:  "Russian has 6 grammatical cases. Nominative (subject): кто? что? Genitive (possession, 'of'): кого? чего? Dative (indirect object, 'to'): кому? чему? Accusative (direct object): кого? что? Instrumental ('with/by'): кем? чем? Prepositional ('about/in'): о ком? о чём? Each case has different noun endings.",
	},
	{
		ID:       "ru_verb_aspect",
		Language: "Russian",
		Content:  "Russian verbs have two aspects: imperfective (incomplete/repeated) and perfective (complete/single). читать (imperfective) = to read/be reading. прочитать (perfective) = to finish reading. Я читал книгу (I was reading) vs Я прочитал книгу (I finished reading). Most verbs come in pairs.",
	},
	{
		ID:       "ru_gender",
		Language: "Russian",
		Content:  "Russian nouns have three genders. Masculine: usually end in consonant (стол = table). Feminine: usually end in -а/-я (книга = book). Neuter: usually end in -о/-е (окно = window). Adjectives must agree: красивый дом (beautiful house-m), красивая машина (beautiful car-f), красивое небо (beautiful sky-n).",
	},
	{
		ID:       "ru_motion_verbs",
		Language: "Russian",
		Content:  "Russian has paired motion verbs: one for going somewhere specific (definite), one for general motion (indefinite). идти/ходить = go on foot. ехать/ездить = go by vehicle. Я иду в школу (I'm going to school now) vs Я хожу в школу (I go to school regularly).",
	},
	{
		ID:       "ru_no_articles",
		Language: "Russian",
		Content:  "Russian has no articles (a, an, the). Context determines if something is specific or general. Кот спит = A cat sleeps / The cat sleeps. Word order and demonstratives help clarify: Этот кот (this cat = the cat). Какой-то кот (some cat = a cat).",
	},
	{
		ID:       "ja_writing_systems",
		Language: "Japanese",
		Content:  "Japanese uses three writing systems. Hiragana (ひらがな): native words, grammar. Katakana (カタカナ): foreign words, emphasis. Kanji (漢字): Chinese characters for meaning. Example: 私はコーヒーを飲みます (I drink coffee) uses all three: 私/飲 (kanji), は/を/みます (hiragana), コーヒー (katakana).",
	},
	{
		ID:       "ja_particles",
		Language: "Japanese",
		Content:  "Japanese particles mark grammar roles. は (wa): topic marker (私は = as for me). が (ga): subject marker (犬がいる = there is a dog). を (wo): object marker (本を読む = read a book). に (ni): direction/time (学校に行く = go to school). で (de): location of action (家で食べる = eat at home).",
	},
	{
		ID:       "ja_verb_forms",
		Language: "Japanese",
		Content:  "Japanese verbs conjugate but don't change for person/number. Basic forms: dictionary form (食べる taberu), masu form (食べます tabemasu - polite), te form (食べて tabete - connecting), nai form (食べない tabenai - negative). Verbs come at sentence end.",
	},
	{
		ID:       "ja_keigo",
		Language: "Japanese",
		Content:  "Keigo (敬語) is Japanese honorific language. Three levels: Teineigo (丁寧語): polite (-ます forms). Sonkeigo (尊敬語): respect for others' actions (いらっしゃる instead of いる). Kenjougo (謙譲語): humble your own actions (参る instead of 行く). Essential for business and formal situations.",
	},
	{
		ID:       "ja_sentence_structure",
		Language: "Japanese",
		Content:  "Japanese word order is SOV (Subject-Object-Verb). English: I eat sushi. Japanese: 私は寿司を食べます (I sushi eat). Modifiers come before what they modify. The verb always comes at the end. Questions add か (ka) at the end: 食べますか？(Do you eat?)",
	},
	{
		ID:       "ja_counters",
		Language: "Japanese",
		Content:  "Japanese uses counters for counting different objects. 人 (nin): people (三人 = 3 people). 本 (hon): long objects (二本 = 2 pens). 匹 (hiki): small animals (四匹 = 4 cats). 枚 (mai): flat objects (五枚 = 5 papers). 個 (ko): general counter. Numbers change pronunciation with some counters.",
	},
	{
		ID:       "gen_writing_systems",
		Language: domain.LanguageGeneral,
		Content:  "Different writing systems: Alphabets (Latin, Cyrillic) where letters represent sounds. Syllabaries (Japanese kana) where symbols represent syllables. Logographic (Chinese) where characters represent meanings. Russian uses Cyrillic (33 letters). Japanese combines all three types.",
	},
	{
		ID:       "gen_word_order",
		Language: domain.LanguageGeneral,
		Content:  "Main word orders in languages: SVO (Subject-Verb-Object): English, Chinese. SOV (Subject-Object-Verb): Japanese. Russian is flexible but commonly SVO. Word order affects how you construct sentences and think in the language.",
	},
}

// seedExamples is the starter set of annotated example sentences.
var seedExamples = []domain.Document{
	{
		ID:       "ex_en_1",
		Language: "English",
		Content:  "'I've been working here for 5 years' - Present perfect continuous. Shows an action that started in the past and continues now. Simple: I started 5 years ago and I still work here.",
	},
	{
		ID:       "ex_en_2",
		Language: "English",
		Content:  "'If I had known, I would have helped' - Third conditional (past unreal). Simple: I didn't know, so I didn't help. But imagine I knew - then I would help.",
	},
	{
		ID:       "ex_en_3",
		Language: "English",
		Content:  "'The report was submitted by the team' - Passive voice. The focus is on 'the report', not who did it. Active version: 'The team submitted the report.'",
	},
	{
		ID:       "ex_en_4",
		Language: "English",
		Content:  "'She came up with a great idea' - Phrasal verb 'come up with' = think of, invent. Simple: She thought of a great idea.",
	},
	{
		ID:       "ex_zh_1",
		Language: "Chinese",
		Content:  "你好，你叫什么名字？(Nǐ hǎo, nǐ jiào shénme míngzi?) - Hello, what is your name? Basic greeting and introduction.",
	},
	{
		ID:       "ex_zh_2",
		Language: "Chinese",
		Content:  "我想要一杯咖啡。(Wǒ xiǎng yào yī bēi kāfēi.) - I want a cup of coffee. 想要 = want, 一杯 = one cup (measure word), 咖啡 = coffee.",
	},
	{
		ID:       "ex_zh_3",
		Language: "Chinese",
		Content:  "他在学校学习中文。(Tā zài xuéxiào xuéxí zhōngwén.) - He studies Chinese at school. 在 indicates location of action.",
	},
	{
		ID:       "ex_zh_4",
		Language: "Chinese",
		Content:  "我把书放在桌子上了。(Wǒ bǎ shū fàng zài zhuōzi shàng le.) - I put the book on the table. 把 structure for disposal.",
	},
	{
		ID:       "ex_ru_1",
		Language: "Russian",
		Content:  "Привет! Как дела? (Privet! Kak dela?) - Hi! How are you? Informal greeting among friends.",
	},
	{
		ID:       "ex_ru_2",
		Language: "Russian",
		Content:  "Я хочу заказать кофе. (Ya khochu zakazat' kofe.) - I want to order coffee. хочу = I want, заказать = to order (perfective).",
	},
	{
		ID:       "ex_ru_3",
		Language: "Russian",
		Content:  "Я читаю интересную книгу. (Ya chitayu interesnuyu knigu.) - I am reading an interesting book. Accusative case for direct object.",
	},
	{
		ID:       "ex_ru_4",
		Language: "Russian",
		Content:  "Я еду на работу на автобусе. (Ya yedu na rabotu na avtobuse.) - I'm going to work by bus. еду = definite motion verb (going now).",
	},
	{
		ID:       "ex_ja_1",
		Language: "Japanese",
		Content:  "はじめまして。田中です。(Hajimemashite. Tanaka desu.) - Nice to meet you. I'm Tanaka. Standard self-introduction.",
	},
	{
		ID:       "ex_ja_2",
		Language: "Japanese",
		Content:  "コーヒーを一つください。(Kōhī o hitotsu kudasai.) - One coffee, please. を marks object, ください = please give me.",
	},
	{
		ID:       "ex_ja_3",
		Language: "Japanese",
		Content:  "駅はどこですか？(Eki wa doko desu ka?) - Where is the station? は marks topic, か makes it a question.",
	},
	{
		ID:       "ex_ja_4",
		Language: "Japanese",
		Content:  "昨日、友達と映画を見ました。(Kinō, tomodachi to eiga o mimashita.) - Yesterday, I watched a movie with a friend. と = with, を = object marker, ました = past polite.",
	},
}
