package tables

var Tables = []interface{}{
	&MasterSeed{},
	&InscribeRecord{},
}
