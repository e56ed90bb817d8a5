package patient

import "strings"

// Municipalities is the list of municipalities served by the hospital's
// referral network, used to populate intake forms. The list is advisory:
// a municipality outside it is stored as written rather than rejected,
// since referrals occasionally arrive from outside the network.
var Municipalities = []string{
	"Acarape",
	"Acaraú",
	"Acopiara",
	"Aiuaba",
	"Altaneira",
	"Amontada",
	"Antonina do Norte",
	"Aquiraz",
	"Aracati",
	"Araripe",
	"Arneiroz",
	"Assaré",
	"Aurora",
	"Barbalha",
	"Baturité",
	"Beberibe",
	"Brejo Santo",
	"Camocim",
	"Campos Sales",
	"Canindé",
	"Caririaçu",
	"Cariré",
	"Cascavel",
	"Caucaia",
	"Crateús",
	"Crato",
	"Eusébio",
	"Farias Brito",
	"Forquilha",
	"Fortaleza",
	"Fortim",
	"Granja",
	"Groaíras",
	"Guaramiranga",
	"Horizonte",
	"Icapuí",
	"Icó",
	"Iguatu",
	"Independência",
	"Irauçuba",
	"Itaitinga",
	"Itapipoca",
	"Itarema",
	"Jardim",
	"Juazeiro do Norte",
	"Jucás",
	"Lavras da Mangabeira",
	"Maracanaú",
	"Maranguape",
	"Massapê",
	"Mauriti",
	"Milagres",
	"Missão Velha",
	"Nova Olinda",
	"Novo Oriente",
	"Orós",
	"Pacajus",
	"Pacatuba",
	"Pacoti",
	"Paracuru",
	"Paraipaba",
	"Parambu",
	"Pentecoste",
	"Potengi",
	"Quixadá",
	"Quixeramobim",
	"Redenção",
	"Saboeiro",
	"Santana do Acaraú",
	"Santana do Cariri",
	"Senador Pompeu",
	"Sobral",
	"São Gonçalo do Amarante",
	"Tauá",
	"Trairi",
	"Várzea Alegre",
}

// KnownMunicipality reports whether name matches an entry in Municipalities,
// ignoring case and surrounding whitespace.
func KnownMunicipality(name string) bool {
	name = strings.TrimSpace(name)
	for _, m := range Municipalities {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}
