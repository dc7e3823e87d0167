package alien

import "github.com/hitoshi/aliendex/internal/model"

// seedFixtures はシードで投入する固定のエイリアン一覧。
// 所有者を持たないため、シード後のレコードは誰も更新・削除できない。
var seedFixtures = []model.AlienInput{
	{Species: "Wookie", Planet: "Kashyyyk", Friendly: false, Discovered: 1977},
	{Species: "Vulcans", Planet: "Vulcan", Friendly: true, Discovered: 1966},
	{Species: "Klingon", Planet: "Klingonii", Friendly: false, Discovered: 1967},
	{Species: "Kryptonians", Planet: "Krypton", Friendly: true, Discovered: 1933},
	{Species: "Gallifreyans", Planet: "Gallifrey", Friendly: true, Discovered: 1963},
}

// SeedFixtures はシード用の固定データのコピーを返す。
func SeedFixtures() []model.AlienInput {
	out := make([]model.AlienInput, len(seedFixtures))
	copy(out, seedFixtures)
	return out
}
