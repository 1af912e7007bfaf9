package storage

// Locale mask bits. A root lookup returns only variants whose locale
// flags intersect the caller's mask.
const (
	LocaleEnUS uint32 = 0x00000002
	LocaleKoKR uint32 = 0x00000004
	LocaleFrFR uint32 = 0x00000010
	LocaleDeDE uint32 = 0x00000020
	LocaleZhCN uint32 = 0x00000040
	LocaleEsES uint32 = 0x00000080
	LocaleZhTW uint32 = 0x00000100
	LocaleEnGB uint32 = 0x00000200
	LocaleEnCN uint32 = 0x00000400
	LocaleEnTW uint32 = 0x00000800
	LocaleEsMX uint32 = 0x00001000
	LocaleRuRU uint32 = 0x00002000
	LocalePtBR uint32 = 0x00004000
	LocaleItIT uint32 = 0x00008000
	LocalePtPT uint32 = 0x00010000

	// LocaleAll matches every variant.
	LocaleAll uint32 = 0xFFFFFFFF
)

// DefaultLocale is used when Open receives a zero locale mask. The build
// configuration is not consulted for a default locale.
const DefaultLocale = LocaleEnUS | LocaleEnGB

// Game identifiers reported by Info(InfoGameInfo).
const (
	GameUnknown uint32 = iota
	GameHotS
	GameWoW
	GameDiablo3
)
